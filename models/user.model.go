package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin roles
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
)

// Admin account statuses
const (
	UserActive   = "ACTIVE"
	UserInactive = "INACTIVE"
)

// User is an internal administrator of the back-office.
type User struct {
	gorm.Model
	Name      string     `json:"name" gorm:"type:varchar(50)"`
	Email     string     `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Role      string     `json:"role" gorm:"type:varchar(15);default:'ADMIN'"`
	Status    string     `json:"status" gorm:"type:varchar(15);default:'ACTIVE'"`
	Password  string     `json:"-" gorm:"not null"`
	LastLogin *time.Time `json:"last_login"`
}

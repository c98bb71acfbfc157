package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginHistory is one successful admin sign-in.
type LoginHistory struct {
	gorm.Model
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(45)"`
	Device    string    `json:"device" gorm:"type:varchar(255)"`
	Timestamp time.Time `json:"timestamp"`
}

func (LoginHistory) TableName() string {
	return "login_history"
}

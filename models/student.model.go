package models

import "gorm.io/gorm"

// Student verification statuses
const (
	StudentUnverified = "UNVERIFIED"
	StudentVerified   = "VERIFIED"
)

// Student is an end customer ("client") of the platform.
type Student struct {
	gorm.Model
	Name     string `json:"name" gorm:"type:varchar(50)"`
	Email    string `json:"email" gorm:"type:varchar(50);uniqueIndex"`
	Phone    string `json:"phone" gorm:"type:varchar(15);uniqueIndex"`
	Status   string `json:"status" gorm:"type:varchar(15);default:'UNVERIFIED'"`
	Password string `json:"-"`
	Town     string `json:"town" gorm:"type:varchar(20)"`
	Address  string `json:"address" gorm:"type:varchar(50)"`
	Company  string `json:"company" gorm:"type:varchar(30)"`
	Icon     string `json:"icon" gorm:"type:text"`
	ImageURL string `json:"image_url" gorm:"-"`

	Subscriptions []Subscription `json:"-" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Student) TableName() string {
	return "c_users"
}

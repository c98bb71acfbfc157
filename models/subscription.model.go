package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription statuses
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// Subscription grants a student access to a package for a period, bought by
// one payment.
type Subscription struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	PackageID    uint      `json:"package_id" gorm:"not null;index"`
	PaymentID    uint      `json:"payment_id" gorm:"uniqueIndex"`
	PackagePlan  string    `json:"package_plan" gorm:"type:varchar(10)"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date" gorm:"index"`
	Status       string    `json:"status" gorm:"type:varchar(15);default:'ACTIVE'"`
	ReminderSent bool      `json:"reminder_sent" gorm:"default:false"`

	Package Package `json:"package,omitempty" gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
	PaymentFailed    = "Failed"
	PaymentCancelled = "Cancelled"
)

// Payment records one M-Pesa STK push and its outcome.
type Payment struct {
	gorm.Model
	ClientID          uint           `json:"client" gorm:"column:client;index;not null"`
	CourseID          uint           `json:"course" gorm:"column:course;index;not null"`
	PackageID         uint           `json:"package" gorm:"column:package;index;not null"`
	Plan              string         `json:"plan" gorm:"type:varchar(10)"`
	Amount            float64        `json:"amount"`
	AmountPaid        float64        `json:"amount_paid"`
	Phone             string         `json:"phone" gorm:"type:varchar(15)"`
	Status            string         `json:"status" gorm:"type:varchar(24);index;default:'Pending'"`
	MpesaCode         *string        `json:"mpesa_code" gorm:"type:varchar(20);uniqueIndex"`
	MerchantRequestID string         `json:"merchant_request_id" gorm:"type:varchar(64)"`
	CheckoutRequestID *string        `json:"checkout_request_id" gorm:"type:varchar(64);uniqueIndex"`
	AccountReference  string         `json:"account_reference" gorm:"type:varchar(36)"`
	ResultCode        *int           `json:"result_code"`
	ResultDesc        string         `json:"result_desc"`
	Date              *time.Time     `json:"date"`
	GatewayRequest    datatypes.JSON `json:"-"`
	CallbackPayload   datatypes.JSON `json:"-"`

	Client  Student `json:"-" gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Package Package `json:"-" gorm:"foreignKey:PackageID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// IsPending reports whether the payment still awaits a gateway result.
func (p Payment) IsPending() bool {
	return p.Status == PaymentPending
}

package utils

import (
	"errors"
	"fmt"
	"time"

	"adconnect/logger"
	"adconnect/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrPaymentNotPending is returned when a result arrives for a payment that
// already left Pending. Callers treat it as a no-op.
var ErrPaymentNotPending = errors.New("payment is no longer pending")

// PaymentResult is a gateway outcome for one payment, from a callback, a
// status query or the stale sweep.
type PaymentResult struct {
	ResultCode int
	ResultDesc string
	Receipt    string
	AmountPaid float64
	Date       time.Time
	Payload    []byte
}

// StatusFor maps a Daraja result code to a payment status.
func StatusFor(resultCode int) string {
	switch resultCode {
	case MpesaResultSuccess:
		return models.PaymentCompleted
	case MpesaResultCancelled:
		return models.PaymentCancelled
	default:
		return models.PaymentFailed
	}
}

// ApplyPaymentResult moves a Pending payment to its final status. The update is
// conditional on the row still being Pending, so duplicate callbacks change
// nothing and return ErrPaymentNotPending. A successful payment activates a
// subscription in the same transaction and emails a receipt after commit. A
// failed activation is logged and leaves the payment Completed.
func ApplyPaymentResult(db *gorm.DB, paymentID uint, res PaymentResult) (*models.Payment, *models.Subscription, error) {
	status := StatusFor(res.ResultCode)
	code := res.ResultCode

	updates := map[string]interface{}{
		"status":      status,
		"result_code": &code,
		"result_desc": res.ResultDesc,
	}
	if len(res.Payload) > 0 {
		updates["callback_payload"] = datatypes.JSON(res.Payload)
	}
	if status == models.PaymentCompleted {
		if res.Receipt != "" {
			receipt := res.Receipt
			updates["mpesa_code"] = &receipt
		}
		updates["amount_paid"] = res.AmountPaid
		date := res.Date
		if date.IsZero() {
			date = time.Now()
		}
		updates["date"] = &date
	}

	var payment models.Payment
	var sub *models.Subscription
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("update payment: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrPaymentNotPending
		}

		if err := tx.Preload("Package").First(&payment, paymentID).Error; err != nil {
			return fmt.Errorf("reload payment: %w", err)
		}
		if status != models.PaymentCompleted {
			return nil
		}

		// a failed activation rolls back to this savepoint only
		actErr := tx.Transaction(func(stx *gorm.DB) error {
			var err error
			sub, err = ActivateSubscription(stx, payment, payment.Package, time.Now())
			return err
		})
		if actErr != nil {
			sub = nil
			logger.Log.Error().Err(actErr).Uint("payment_id", paymentID).Msg("completed payment without subscription")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log := logger.Log.With("payments")
	log.Info().
		Uint("payment_id", payment.ID).
		Str("status", payment.Status).
		Int("result_code", res.ResultCode).
		Msg("payment result applied")

	if sub != nil {
		var student models.Student
		if err := db.First(&student, payment.ClientID).Error; err != nil {
			log.Error().Err(err).Uint("client_id", payment.ClientID).Msg("receipt email skipped, student lookup failed")
		} else {
			SendPaymentReceiptEmail(student.Email, student.Name, payment.Package.PackageName, res.Receipt, res.AmountPaid, sub.EndDate)
		}
	}

	return &payment, sub, nil
}

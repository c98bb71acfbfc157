package utils

import (
	"errors"
	"time"

	"adconnect/database"
	"adconnect/logger"
	"adconnect/models"
)

const staleResultDesc = "Timed out waiting for callback"

// SweepStalePayments fails Pending payments older than timeout. The gateway
// never called back for these, so the customer must start again.
func SweepStalePayments(at time.Time, timeout time.Duration) int {
	if timeout <= 0 {
		return 0
	}
	db := database.Database.Db
	log := logger.Log.With("scheduler")

	var stale []models.Payment
	if err := db.
		Where("status = ? AND created_at < ?", models.PaymentPending, at.Add(-timeout)).
		Find(&stale).Error; err != nil {
		log.Error().Err(err).Msg("fetching stale payments")
		return 0
	}

	swept := 0
	for _, p := range stale {
		_, _, err := ApplyPaymentResult(db, p.ID, PaymentResult{
			ResultCode: -1,
			ResultDesc: staleResultDesc,
		})
		if errors.Is(err, ErrPaymentNotPending) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Uint("payment_id", p.ID).Msg("failing stale payment")
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Info().Int("payments", swept).Msg("stale payments failed")
	}
	return swept
}

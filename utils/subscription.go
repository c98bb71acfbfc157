package utils

import (
	"errors"
	"fmt"
	"time"

	"adconnect/models"

	"gorm.io/gorm"
)

var ErrTierUnavailable = errors.New("package tier unavailable")

// ActivateSubscription creates the subscription a completed payment bought.
// When the student already holds an active subscription to the same package
// the new window starts where that one ends.
func ActivateSubscription(tx *gorm.DB, payment models.Payment, pkg models.Package, now time.Time) (*models.Subscription, error) {
	tier, ok := pkg.Tier(payment.Plan)
	if !ok {
		return nil, fmt.Errorf("%w: %s on package %d", ErrTierUnavailable, payment.Plan, pkg.ID)
	}
	period, err := ParsePeriod(tier.Period)
	if err != nil {
		return nil, err
	}

	start := now
	var current models.Subscription
	err = tx.Where("user_id = ? AND package_id = ? AND status = ? AND end_date > ?",
		payment.ClientID, pkg.ID, models.SubscriptionActive, now).
		Order("end_date desc").
		First(&current).Error
	switch {
	case err == nil:
		start = current.EndDate
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("look up active subscription: %w", err)
	}

	sub := models.Subscription{
		UserID:      payment.ClientID,
		PackageID:   pkg.ID,
		PaymentID:   payment.ID,
		PackagePlan: tier.Plan,
		StartDate:   start,
		EndDate:     period.AddTo(start),
		Status:      models.SubscriptionActive,
	}
	if err := tx.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &sub, nil
}

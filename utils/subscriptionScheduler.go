package utils

import (
	"time"

	"adconnect/config"
	"adconnect/database"
	"adconnect/logger"
	"adconnect/models"

	"github.com/robfig/cron/v3"
)

// InitializeSchedulers registers the subscription and payment jobs and starts
// the cron runner. The caller stops it on shutdown.
func InitializeSchedulers(cfg *config.Config) (*cron.Cron, error) {
	log := logger.Log.With("scheduler")
	log.Info().Msg("initializing schedulers")

	c := cron.New()

	if _, err := c.AddFunc(cfg.SubscriptionCron, func() {
		log.Info().Msg("running subscription check")
		ProcessExpiringSubscriptions(time.Now())
		ExpireSubscriptions(time.Now())
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cfg.PaymentSweepCron, func() {
		SweepStalePayments(time.Now(), cfg.PaymentPendingTimeout)
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Info().
		Str("subscriptions", cfg.SubscriptionCron).
		Str("payments", cfg.PaymentSweepCron).
		Msg("schedulers started")
	return c, nil
}

// ProcessExpiringSubscriptions sends one reminder for each active
// subscription ending within two days.
func ProcessExpiringSubscriptions(at time.Time) int {
	db := database.Database.Db
	log := logger.Log.With("scheduler")
	twoDaysFromNow := at.AddDate(0, 0, 2)

	var expiring []models.Subscription
	if err := db.
		Where("status = ? AND reminder_sent = ?", models.SubscriptionActive, false).
		Where("end_date BETWEEN ? AND ?", at, twoDaysFromNow).
		Preload("Package").
		Find(&expiring).Error; err != nil {
		log.Error().Err(err).Msg("fetching expiring subscriptions")
		return 0
	}

	sent := 0
	for _, sub := range expiring {
		var student models.Student
		if err := db.First(&student, sub.UserID).Error; err != nil {
			log.Error().Err(err).Uint("subscription_id", sub.ID).Msg("fetching subscriber")
			continue
		}

		SendSubscriptionExpiryReminder(student.Email, student.Name, sub.Package.PackageName, sub.EndDate)

		if err := db.Model(&sub).Update("reminder_sent", true).Error; err != nil {
			log.Error().Err(err).Uint("subscription_id", sub.ID).Msg("marking reminder sent")
			continue
		}
		sent++
	}

	log.Info().Int("reminders", sent).Msg("expiry reminders processed")
	return sent
}

// ExpireSubscriptions marks active subscriptions past their end date EXPIRED
// and notifies the students.
func ExpireSubscriptions(at time.Time) int {
	db := database.Database.Db
	log := logger.Log.With("scheduler")

	var expired []models.Subscription
	if err := db.
		Where("status = ? AND end_date < ?", models.SubscriptionActive, at).
		Preload("Package").
		Find(&expired).Error; err != nil {
		log.Error().Err(err).Msg("fetching expired subscriptions")
		return 0
	}

	count := 0
	for _, sub := range expired {
		result := db.Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, models.SubscriptionActive).
			Update("status", models.SubscriptionExpired)
		if result.Error != nil {
			log.Error().Err(result.Error).Uint("subscription_id", sub.ID).Msg("expiring subscription")
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}
		count++

		var student models.Student
		if err := db.First(&student, sub.UserID).Error; err == nil {
			SendSubscriptionExpiredEmail(student.Email, student.Name, sub.Package.PackageName)
		}
	}

	if count > 0 {
		log.Info().Int("expired", count).Msg("subscriptions expired")
	}
	return count
}

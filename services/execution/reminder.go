package execution

import (
	"fmt"
	"time"

	"concierge/config"
	"concierge/models"
	"concierge/services/tasks"
	"concierge/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderScheduler enqueues booking reminders after a successful
// dispatch. Failures are logged, never propagated: a missed reminder
// must not fail the booking.
type ReminderScheduler struct {
	client *asynq.Client
}

func NewReminderScheduler() *ReminderScheduler {
	return &ReminderScheduler{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisQueueDB,
		}),
	}
}

// Schedule queues a reminder the day before the booking date, or an
// hour out when the date is missing or already close.
func (r *ReminderScheduler) Schedule(payload models.ReminderPayload) {
	logger := utils.GetLogger()

	fireAt := time.Now().Add(time.Hour)
	date := payload.Date
	if date == "" {
		date = payload.StartDate
	}
	if date != "" {
		if day, err := time.Parse("2006-01-02", date); err == nil {
			candidate := day.Add(-24 * time.Hour)
			if candidate.After(time.Now()) {
				fireAt = candidate
			}
		}
	}

	task, opts, err := tasks.NewBookingReminderTask(payload, fireAt)
	if err != nil {
		logger.Error("Failed to build booking reminder task",
			zap.String("booking_code", payload.BookingCode), zap.Error(err))
		return
	}
	if _, err := r.client.Enqueue(task, opts...); err != nil {
		logger.Error("Failed to enqueue booking reminder",
			zap.String("booking_code", payload.BookingCode), zap.Error(err))
		return
	}
	logger.Info(fmt.Sprintf("Scheduled reminder for booking %s", payload.BookingCode),
		zap.Time("fire_at", fireAt))
}

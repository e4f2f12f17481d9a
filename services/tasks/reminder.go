package tasks

import (
	"concierge/models"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeBookingReminder = "booking:reminder"

func NewBookingReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

package notification

import (
	"context"

	"concierge/models"
)

// Service delivers booking reminders to the user's channel.
type Service interface {
	SendBookingReminder(ctx context.Context, payload models.ReminderPayload) error
}

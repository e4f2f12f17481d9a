package execution

import (
	"context"

	"concierge/models"
)

// DispatchResult is the backend's answer to an action dispatch.
type DispatchResult struct {
	Status      string `json:"status"`
	BookingCode string `json:"booking_code,omitempty"`
	Error       string `json:"error,omitempty"`
}

const (
	StatusExecuted = "EXECUTED"
	StatusError    = "ERROR"
)

// Backend actually creates, modifies and cancels bookings. Idempotency
// by booking code on retry is the backend's concern, not ours.
type Backend interface {
	Dispatch(ctx context.Context, action string, facts *models.OutcomeFacts, booking *models.BookingPayload) (*DispatchResult, error)
}

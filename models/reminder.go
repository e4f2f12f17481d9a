package models

// ReminderPayload is queued after a booking executes so the worker can
// notify the user ahead of the appointment or stay.
type ReminderPayload struct {
	UserID      string `json:"user_id"`
	BookingCode string `json:"booking_code"`
	IntentName  Intent `json:"intent_name"`
	ServiceID   string `json:"service_id,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Email       string `json:"email,omitempty"`
}

package models

// TurnRequest is the per-turn API input, independent of transport.
type TurnRequest struct {
	UserID        string         `json:"user_id" binding:"required"`
	Text          string         `json:"text" binding:"required"`
	Domain        Domain         `json:"domain"`
	Timezone      string         `json:"timezone,omitempty"`
	TenantID      string         `json:"tenant_id,omitempty"`
	TenantContext *TenantContext `json:"tenant_context,omitempty"`
	PhoneNumber   string         `json:"phone_number,omitempty"`
	Email         string         `json:"email,omitempty"`
	CustomerID    string         `json:"customer_id,omitempty"`
}

// ClarificationData is the structured payload attached to a
// clarification outcome. Missing and Ambiguous are always present
// lists, never nil.
type ClarificationData struct {
	Reason    string        `json:"reason"`
	Missing   []string      `json:"missing"`
	Ambiguous []interface{} `json:"ambiguous"`
	Options   []string      `json:"options,omitempty"`
}

// OutcomeFacts echoes the turn's effective state back to the caller.
type OutcomeFacts struct {
	Slots        Slots                  `json:"slots"`
	MissingSlots []string               `json:"missing_slots"`
	Context      map[string]interface{} `json:"context,omitempty"`
}

// TurnOutcome is the status-shaped result of one conversation turn.
type TurnOutcome struct {
	TurnID              string                 `json:"turn_id,omitempty"`
	Status              SessionStatus          `json:"status"`
	IntentName          Intent                 `json:"intent_name"`
	ActionName          string                 `json:"action_name,omitempty"`
	BookingCode         string                 `json:"booking_code,omitempty"`
	Booking             *BookingPayload        `json:"booking,omitempty"`
	Slots               Slots                  `json:"slots,omitempty"`
	Awaiting            string                 `json:"awaiting,omitempty"`
	AwaitingSlot        string                 `json:"awaiting_slot,omitempty"`
	ClarificationReason string                 `json:"clarification_reason,omitempty"`
	TemplateKey         string                 `json:"template_key,omitempty"`
	Data                *ClarificationData     `json:"data,omitempty"`
	Context             map[string]interface{} `json:"context,omitempty"`
	Facts               *OutcomeFacts          `json:"facts,omitempty"`
}

// TurnResponse is the per-turn API output envelope.
type TurnResponse struct {
	Success bool         `json:"success"`
	Outcome *TurnOutcome `json:"outcome,omitempty"`
	Error   string       `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

// Turn-level error codes.
const (
	ErrCodeMissingIntent     = "missing_intent"
	ErrCodeUnsupportedIntent = "unsupported_intent"
)

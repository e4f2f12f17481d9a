package models

// SessionStatus is the dialog status persisted with a session and
// surfaced in turn outcomes.
type SessionStatus string

const (
	StatusReady                SessionStatus = "READY"
	StatusNeedsClarification   SessionStatus = "NEEDS_CLARIFICATION"
	StatusAwaitingConfirmation SessionStatus = "AWAITING_CONFIRMATION"
	StatusExecuted             SessionStatus = "EXECUTED"
)

// ModificationContext flags which dimensions the user intends to change
// in a MODIFY_BOOKING turn.
type ModificationContext struct {
	ModifyingDate      bool `json:"modifying_date,omitempty"`
	ModifyingTime      bool `json:"modifying_time,omitempty"`
	ModifyingStartDate bool `json:"modifying_start_date,omitempty"`
	ModifyingEndDate   bool `json:"modifying_end_date,omitempty"`
}

// Empty reports whether no dimension is flagged.
func (m *ModificationContext) Empty() bool {
	return m == nil || (!m.ModifyingDate && !m.ModifyingTime && !m.ModifyingStartDate && !m.ModifyingEndDate)
}

// Session is the conversation state persisted per (domain, user).
// Invariants: intent is immutable within a session; slots are monotonic
// except on intent reset; only NEEDS_CLARIFICATION and
// AWAITING_CONFIRMATION sessions are persisted.
type Session struct {
	Intent                   Intent               `json:"intent"`
	Slots                    Slots                `json:"slots"`
	MissingSlots             []string             `json:"missing_slots"`
	Status                   SessionStatus        `json:"status"`
	AwaitingSlot             string               `json:"awaiting_slot,omitempty"`
	ModificationContext      *ModificationContext `json:"modification_context,omitempty"`
	ResolvedBookingSemantics *ResolvedBooking     `json:"resolved_booking_semantics,omitempty"`
}

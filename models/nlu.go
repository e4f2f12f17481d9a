package models

import "encoding/json"

// IntentGuess is the NLU provider's intent hypothesis.
type IntentGuess struct {
	Name       Intent  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ServiceRef names a service inside the booking payload.
type ServiceRef struct {
	Text string `json:"text"`
}

// DatetimeRange is a resolved absolute datetime span.
type DatetimeRange struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// BookingPayload is the provider's view of the booking under
// construction.
type BookingPayload struct {
	Services          []ServiceRef   `json:"services,omitempty"`
	DatetimeRange     *DatetimeRange `json:"datetime_range,omitempty"`
	ConfirmationState string         `json:"confirmation_state,omitempty"`
	Date              string         `json:"date,omitempty"`
}

// AnnotationType classifies a resolved service mention.
type AnnotationType string

const (
	AnnotationAlias    AnnotationType = "ALIAS"
	AnnotationFamily   AnnotationType = "FAMILY"
	AnnotationModifier AnnotationType = "MODIFIER"
)

// ResolvedService is one service mention from the semantic trace.
type ResolvedService struct {
	Text            string         `json:"text"`
	Canonical       string         `json:"canonical,omitempty"`
	AnnotationType  AnnotationType `json:"annotation_type,omitempty"`
	TenantServiceID string         `json:"tenant_service_id,omitempty"`
}

// Date and time modes of the semantic trace.
const (
	DateModeNone      = "none"
	DateModeSingleDay = "single_day"
	DateModeRange     = "range"
	DateModeFlexible  = "flexible"

	TimeModeNone   = "none"
	TimeModeExact  = "exact"
	TimeModeRange  = "range"
	TimeModeWindow = "window"

	DateRoleStart = "START_DATE"
	DateRoleEnd   = "END_DATE"
)

// TimeConstraint is the provider's time restriction. The wire value may
// be a bare string or a dict with mode and endpoints; both decode here.
type TimeConstraint struct {
	Mode  string `json:"mode,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
	Value string `json:"value,omitempty"`
	Time  string `json:"time,omitempty"`
}

func (tc *TimeConstraint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		tc.Mode = TimeModeExact
		tc.Start = s
		return nil
	}
	type alias TimeConstraint
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*tc = TimeConstraint(a)
	return nil
}

// Resolved returns the effective time string for the constraint: for
// exact mode the start; otherwise start, then value, then time.
func (tc *TimeConstraint) Resolved() string {
	if tc == nil {
		return ""
	}
	if tc.Mode == TimeModeExact && tc.Start != "" {
		return tc.Start
	}
	if tc.Start != "" {
		return tc.Start
	}
	if tc.Value != "" {
		return tc.Value
	}
	return tc.Time
}

// ResolvedBooking is the semantic trace the decision layer consumes.
type ResolvedBooking struct {
	Services       []ResolvedService `json:"services,omitempty"`
	DateMode       string            `json:"date_mode,omitempty"`
	DateRefs       []string          `json:"date_refs,omitempty"`
	DateRoles      []string          `json:"date_roles,omitempty"`
	DateRange      *DateRange        `json:"date_range,omitempty"`
	TimeMode       string            `json:"time_mode,omitempty"`
	TimeRefs       []string          `json:"time_refs,omitempty"`
	TimeConstraint *TimeConstraint   `json:"time_constraint,omitempty"`
	BookingMode    string            `json:"booking_mode,omitempty"`
	Entities       map[string]string `json:"entities,omitempty"`
}

// HasDateRole reports whether the trace tags a date with the role.
func (rb *ResolvedBooking) HasDateRole(role string) bool {
	if rb == nil {
		return false
	}
	for _, r := range rb.DateRoles {
		if r == role {
			return true
		}
	}
	return false
}

// SemanticTrace nests the resolved booking under trace.semantic.
type SemanticTrace struct {
	Semantic *ResolvedBooking `json:"semantic,omitempty"`
}

// NLUStage is one provider pipeline stage; later stages refine earlier
// ones.
type NLUStage struct {
	Semantic *StageSemantic `json:"semantic,omitempty"`
}

type StageSemantic struct {
	ResolvedBooking *ResolvedBooking `json:"resolved_booking,omitempty"`
}

// NLUResponse is the parsed provider response for a single utterance.
type NLUResponse struct {
	Intent              IntentGuess            `json:"intent"`
	Slots               Slots                  `json:"slots,omitempty"`
	MissingSlots        []string               `json:"missing_slots,omitempty"`
	Issues              map[string]interface{} `json:"issues,omitempty"`
	NeedsClarification  bool                   `json:"needs_clarification,omitempty"`
	ClarificationReason string                 `json:"clarification_reason,omitempty"`
	ClarificationData   map[string]interface{} `json:"clarification_data,omitempty"`
	Context             map[string]interface{} `json:"context,omitempty"`
	Trace               *SemanticTrace         `json:"trace,omitempty"`
	Stages              []NLUStage             `json:"stages,omitempty"`
	Booking             *BookingPayload        `json:"booking,omitempty"`
	Entities            map[string]string      `json:"entities,omitempty"`
}

// ResolvedBooking returns the richest semantic trace available: the
// last stage that carries one, else trace.semantic.
func (r *NLUResponse) ResolvedBooking() *ResolvedBooking {
	if r == nil {
		return nil
	}
	for i := len(r.Stages) - 1; i >= 0; i-- {
		if st := r.Stages[i].Semantic; st != nil && st.ResolvedBooking != nil {
			return st.ResolvedBooking
		}
	}
	if r.Trace != nil {
		return r.Trace.Semantic
	}
	return nil
}

// Clone returns a copy safe for the merger to rewrite. Nested semantic
// traces are shared; the merger only mutates slots and missing slots.
func (r *NLUResponse) Clone() *NLUResponse {
	if r == nil {
		return nil
	}
	out := *r
	out.Slots = r.Slots.Clone()
	out.MissingSlots = append([]string(nil), r.MissingSlots...)
	if r.Booking != nil {
		b := *r.Booking
		b.Services = append([]ServiceRef(nil), r.Booking.Services...)
		out.Booking = &b
	}
	return &out
}

package models

// DecisionStatus is the decision layer's verdict for a turn.
type DecisionStatus string

const (
	DecisionResolved           DecisionStatus = "RESOLVED"
	DecisionNeedsClarification DecisionStatus = "NEEDS_CLARIFICATION"
)

// Clarification reason codes. All are recoverable and surfaced to the
// caller.
const (
	ReasonMissingService           = "MISSING_SERVICE"
	ReasonUnsupportedService       = "UNSUPPORTED_SERVICE"
	ReasonAmbiguousService         = "AMBIGUOUS_SERVICE"
	ReasonMissingDate              = "MISSING_DATE"
	ReasonMissingTime              = "MISSING_TIME"
	ReasonMissingStartDate         = "MISSING_START_DATE"
	ReasonMissingEndDate           = "MISSING_END_DATE"
	ReasonMissingDateRange         = "MISSING_DATE_RANGE"
	ReasonMissingTimeFuzzy         = "MISSING_TIME_FUZZY"
	ReasonPolicyTimeWindow         = "POLICY_TIME_WINDOW"
	ReasonPolicyConstraintOnlyTime = "POLICY_CONSTRAINT_ONLY_TIME"
	ReasonMissingContext           = "MISSING_CONTEXT"
	ReasonNeedsClarification       = "NEEDS_CLARIFICATION"
)

// EffectiveTime is the time the decision layer settled on.
type EffectiveTime struct {
	Mode   string `json:"mode"`
	Source string `json:"source"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// DecisionResult is the decision layer's output.
type DecisionResult struct {
	Status          DecisionStatus `json:"status"`
	Reason          string         `json:"reason,omitempty"`
	EffectiveTime   *EffectiveTime `json:"effective_time,omitempty"`
	TenantServiceID string         `json:"tenant_service_id,omitempty"`
}

// Policy carries the deployment's decision toggles.
type Policy struct {
	AllowTimeWindows        bool
	AllowConstraintOnlyTime bool
}

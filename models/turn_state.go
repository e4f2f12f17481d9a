package models

import "go.uber.org/zap"

// TurnState is the per-turn snapshot produced by the finalizer. It is
// constructed fresh each turn, never persisted, and logged once as a
// single structured record.
type TurnState struct {
	Intent                  Intent
	RawProviderSlots        Slots
	MergedSessionSlots      Slots
	PromotedSlots           Slots
	EffectiveCollectedSlots Slots
	RequiredSlots           []string
	MissingSlots            []string
	AwaitingSlotBefore      string
	AwaitingSlotAfter       string
	Status                  SessionStatus
	DecisionReason          string
}

// LogFields renders the snapshot for structured logging.
func (ts *TurnState) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("intent", string(ts.Intent)),
		zap.Strings("raw_provider_slots", ts.RawProviderSlots.Keys()),
		zap.Strings("merged_session_slots", ts.MergedSessionSlots.Keys()),
		zap.Strings("promoted_slots", ts.PromotedSlots.Keys()),
		zap.Strings("effective_slots", ts.EffectiveCollectedSlots.Keys()),
		zap.Strings("required_slots", ts.RequiredSlots),
		zap.Strings("missing_slots", ts.MissingSlots),
		zap.String("awaiting_slot_before", ts.AwaitingSlotBefore),
		zap.String("awaiting_slot_after", ts.AwaitingSlotAfter),
		zap.String("status", string(ts.Status)),
		zap.String("decision_reason", ts.DecisionReason),
	}
}

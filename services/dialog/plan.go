package dialog

import (
	"concierge/models"
)

// PlanResult maps the turn to its allowed and blocked actions.
type PlanResult struct {
	Status         models.SessionStatus
	AllowedActions []string
	BlockedActions []string
	Awaiting       string
	AwaitingSlot   string
}

// PlanBuilder turns a post-merge response into an action plan using the
// intent execution config.
type PlanBuilder struct {
	cfg *ExecutionConfig
}

func NewPlanBuilder(cfg *ExecutionConfig) *PlanBuilder {
	return &PlanBuilder{cfg: cfg}
}

// Plan applies the status precedence to the post-merge response. The
// missing list comes from the finalizer and is never recomputed here.
// While anything is missing nothing is allowed to run, fallbacks
// included; a clarifying turn must not execute.
func (p *PlanBuilder) Plan(intent models.Intent, merged *models.NLUResponse, missing []string, awaitingSlot string) PlanResult {
	var entry IntentExecution
	if p.cfg != nil {
		entry = p.cfg.Intents[string(intent)]
	}
	commit := entry.Commit.Action

	// Awaiting-slot propagation: satisfied this turn clears it,
	// otherwise it stays pending.
	if awaitingSlot != "" && merged != nil && merged.Slots.Has(awaitingSlot) {
		awaitingSlot = ""
	}

	blockedCommit := func() []string {
		if commit == "" {
			return nil
		}
		return []string{commit}
	}

	switch {
	case len(missing) > 0:
		return PlanResult{
			Status:         models.StatusNeedsClarification,
			BlockedActions: blockedCommit(),
			AwaitingSlot:   awaitingSlot,
		}
	case merged != nil && merged.NeedsClarification:
		return PlanResult{
			Status:         models.StatusNeedsClarification,
			BlockedActions: blockedCommit(),
			AwaitingSlot:   awaitingSlot,
		}
	case merged != nil && merged.Booking != nil && merged.Booking.ConfirmationState == "pending":
		return PlanResult{
			Status:         models.StatusAwaitingConfirmation,
			Awaiting:       "USER_CONFIRMATION",
			BlockedActions: blockedCommit(),
			AwaitingSlot:   awaitingSlot,
		}
	}

	if awaitingSlot != "" {
		// The awaited slot is still pending even though nothing is
		// missing any more.
		return PlanResult{
			Status:         models.StatusNeedsClarification,
			BlockedActions: blockedCommit(),
			AwaitingSlot:   awaitingSlot,
		}
	}

	// READY: the commit plus any fallback whose when_missing set still
	// matches, deduplicated. The finalizer already emptied the missing
	// list by this point, so the set is normally just the commit.
	missingSet := map[string]bool{}
	for _, m := range missing {
		missingSet[m] = true
	}
	var allowed []string
	seen := map[string]bool{}
	if commit != "" {
		allowed = append(allowed, commit)
		seen[commit] = true
	}
	for _, fb := range entry.Fallbacks {
		for _, slot := range fb.WhenMissing.AnyOf {
			if missingSet[slot] && !seen[fb.Action] {
				allowed = append(allowed, fb.Action)
				seen[fb.Action] = true
				break
			}
		}
	}
	return PlanResult{
		Status:         models.StatusReady,
		AllowedActions: allowed,
	}
}

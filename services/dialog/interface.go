package dialog

import (
	"context"
	"time"

	"concierge/models"
	"concierge/services/execution"
	"concierge/services/nlu"
	"concierge/services/session"
)

// DialogService runs one conversation turn end to end.
type DialogService interface {
	ProcessTurn(ctx context.Context, req models.TurnRequest) (*models.TurnResponse, error)
}

// ReminderScheduler queues post-execution reminders. Failures never
// propagate into the turn.
type ReminderScheduler interface {
	Schedule(payload models.ReminderPayload)
}

// DefaultDialogService implements DialogService.
type DefaultDialogService struct {
	Sessions   session.Store
	NLU        nlu.Provider
	Backend    execution.Backend
	Reminders  ReminderScheduler
	Resolver   *IntentResolver
	Planner    *PlanBuilder
	Policy     models.Policy
	SessionTTL time.Duration

	locks conversationLocks
}

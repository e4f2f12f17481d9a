package nlu

import (
	"context"

	"concierge/models"
)

// ResolveRequest is the payload sent to the NLU provider for one
// utterance.
type ResolveRequest struct {
	UserID        string                `json:"user_id"`
	Text          string                `json:"text"`
	Domain        models.Domain         `json:"domain"`
	Timezone      string                `json:"timezone,omitempty"`
	TenantContext *models.TenantContext `json:"tenant_context,omitempty"`
}

// Provider resolves user text into intents, slots and semantic traces.
// The orchestrator calls it at most once per turn.
type Provider interface {
	Resolve(ctx context.Context, req ResolveRequest) (*models.NLUResponse, error)
}

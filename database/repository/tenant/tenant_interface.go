package tenant

import (
	"context"

	"concierge/models"
)

// Repository defines access to the tenant catalog: booking mode,
// business category and the alias map the decision layer resolves
// against.
type Repository interface {
	GetByID(ctx context.Context, tenantID string) (*models.TenantRecord, error)
	Upsert(ctx context.Context, rec *models.TenantRecord) error
	Delete(ctx context.Context, tenantID string) error
}

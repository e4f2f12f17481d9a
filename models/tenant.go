package models

// TenantContext is what the orchestrator knows about the tenant for a
// turn: the booking mode and the alias catalog. Alias keys are what the
// tenant actually books; values are canonical families used only for
// NLU matching.
type TenantContext struct {
	TenantID    string            `json:"tenant_id,omitempty"`
	BookingMode string            `json:"booking_mode"`
	Aliases     map[string]string `json:"aliases"`
	Category    string            `json:"category,omitempty"`
	Timezone    string            `json:"timezone,omitempty"`
}

// Domain derives the tenant's domain from its booking mode.
func (t *TenantContext) Domain() Domain {
	if t != nil && t.BookingMode == string(DomainReservation) {
		return DomainReservation
	}
	return DomainService
}

// TenantRecord is the tenant catalog document persisted in Mongo.
type TenantRecord struct {
	TenantID    string            `bson:"_id" json:"tenant_id"`
	BookingMode string            `bson:"booking_mode" json:"booking_mode"`
	Category    string            `bson:"category,omitempty" json:"category,omitempty"`
	Timezone    string            `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Aliases     map[string]string `bson:"aliases" json:"aliases"`
}

// ToContext converts the catalog record into a per-turn tenant context.
func (r *TenantRecord) ToContext() *TenantContext {
	if r == nil {
		return nil
	}
	return &TenantContext{
		TenantID:    r.TenantID,
		BookingMode: r.BookingMode,
		Aliases:     r.Aliases,
		Category:    r.Category,
		Timezone:    r.Timezone,
	}
}

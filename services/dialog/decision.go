package dialog

import (
	"fmt"

	"concierge/models"
)

// Decide runs the tenant-authoritative service gate and the
// temporal-shape validation for a booking turn. It is a pure function;
// the trace records every gate taken for debugging.
func Decide(rb *models.ResolvedBooking, policy models.Policy, intent models.Intent, tenant *models.TenantContext) (models.DecisionResult, []string) {
	var trace []string

	if rb == nil {
		trace = append(trace, "no semantic trace: missing service")
		return clarify(models.ReasonMissingService), trace
	}

	tenantServiceID, reason, trace := resolveService(rb, tenant, intent, trace)
	if reason != "" {
		return clarify(reason), trace
	}

	if reason, t := validateTemporalShape(rb, policy, intent); reason != "" {
		trace = append(trace, t...)
		return clarify(reason), trace
	}

	result := models.DecisionResult{
		Status:          models.DecisionResolved,
		TenantServiceID: tenantServiceID,
		EffectiveTime:   effectiveTime(rb),
	}
	trace = append(trace, "resolved")
	return result, trace
}

func clarify(reason string) models.DecisionResult {
	return models.DecisionResult{Status: models.DecisionNeedsClarification, Reason: reason}
}

// resolveService applies the strict, ordered service gate. Alias
// annotations are authoritative; canonical families must map to exactly
// one tenant alias, and a single family mapping to several tenant
// services is ambiguous even when the union collapses to one.
//
// Appointments relax the ambiguous outcomes: a single extracted family
// the tenant supports passes through as the canonical name instead of a
// tenant id, leaving the concrete variant to the executing side.
// Reservations always need the resolved tenant id.
func resolveService(rb *models.ResolvedBooking, tenant *models.TenantContext, intent models.Intent, trace []string) (string, string, []string) {
	var services []models.ResolvedService
	for _, svc := range rb.Services {
		if svc.AnnotationType == models.AnnotationModifier {
			continue
		}
		services = append(services, svc)
	}
	if len(services) == 0 {
		trace = append(trace, "no non-modifier services")
		return "", models.ReasonMissingService, trace
	}

	for _, svc := range services {
		if svc.AnnotationType == models.AnnotationAlias && svc.TenantServiceID != "" {
			trace = append(trace, fmt.Sprintf("alias annotation resolved to %s", svc.TenantServiceID))
			return svc.TenantServiceID, "", trace
		}
	}

	var families []string
	seenFamily := map[string]bool{}
	for _, svc := range services {
		if svc.Canonical != "" && !seenFamily[svc.Canonical] {
			seenFamily[svc.Canonical] = true
			families = append(families, svc.Canonical)
		}
	}
	if len(families) == 0 {
		trace = append(trace, "no canonical families")
		return "", models.ReasonMissingService, trace
	}

	if tenant == nil || len(tenant.Aliases) == 0 {
		trace = append(trace, "no tenant alias catalog")
		return "", models.ReasonUnsupportedService, trace
	}

	// Invert aliases: family -> tenant service ids.
	byFamily := make(map[string][]string, len(tenant.Aliases))
	for alias, family := range tenant.Aliases {
		byFamily[family] = append(byFamily[family], alias)
	}

	unique := make(map[string]bool)
	for _, family := range families {
		for _, alias := range byFamily[family] {
			unique[alias] = true
		}
	}

	// Appointments with a single supported family proceed on the
	// canonical name without picking a tenant alias. The union must be
	// non-empty; an unsupported family stays unsupported.
	acceptCanonical := func(why string) (string, string, []string) {
		if intent == models.IntentCreateAppointment && len(families) == 1 {
			trace = append(trace, fmt.Sprintf("%s, accepting canonical %s without tenant resolution", why, families[0]))
			return families[0], "", trace
		}
		trace = append(trace, why)
		return "", models.ReasonAmbiguousService, trace
	}

	switch {
	case len(unique) == 0:
		trace = append(trace, "no tenant services for families")
		return "", models.ReasonUnsupportedService, trace
	case len(unique) >= 2:
		return acceptCanonical(fmt.Sprintf("%d candidate tenant services", len(unique)))
	}

	// The union is one, but a single family fanning out to several
	// tenant aliases never auto-resolves to an alias.
	for _, family := range families {
		if len(byFamily[family]) >= 2 {
			return acceptCanonical(fmt.Sprintf("family %s maps to %d tenant services", family, len(byFamily[family])))
		}
	}

	var resolved string
	for alias := range unique {
		resolved = alias
	}
	trace = append(trace, fmt.Sprintf("resolved tenant service %s", resolved))
	return resolved, "", trace
}

// validateTemporalShape checks the intent's temporal demand against the
// semantic trace. Appointments need a full datetime (time checked
// first); reservations need two distinct date anchors.
func validateTemporalShape(rb *models.ResolvedBooking, policy models.Policy, intent models.Intent) (string, []string) {
	var trace []string
	switch intent.TemporalShape() {
	case models.TemporalShapeDatetimeRange:
		timeOK := false
		if tc := rb.TimeConstraint; tc != nil {
			switch tc.Mode {
			case models.TimeModeExact, models.TimeModeWindow, "fuzzy":
				timeOK = true
			}
		}
		if !timeOK {
			switch rb.TimeMode {
			case models.TimeModeExact, models.TimeModeRange, models.TimeModeWindow:
				timeOK = len(rb.TimeRefs) > 0
			}
		}
		if !timeOK {
			trace = append(trace, "no usable time")
			return models.ReasonMissingTime, trace
		}
		dateOK := (rb.DateMode == models.DateModeSingleDay || rb.DateMode == models.DateModeRange) && len(rb.DateRefs) > 0
		if !dateOK {
			trace = append(trace, "no usable date")
			return models.ReasonMissingDate, trace
		}

	case models.TemporalShapeDateRange:
		start, end := dateAnchors(rb)
		if start == "" {
			trace = append(trace, "no start anchor")
			return models.ReasonMissingStartDate, trace
		}
		if end == "" || end == start {
			trace = append(trace, "no distinct end anchor")
			return models.ReasonMissingEndDate, trace
		}

	default:
		return "", trace
	}

	// Policy hooks run only after the shape itself validates.
	if !policy.AllowTimeWindows && rb.TimeMode == models.TimeModeWindow {
		trace = append(trace, "time windows disabled by policy")
		return models.ReasonPolicyTimeWindow, trace
	}
	if tc := rb.TimeConstraint; tc != nil && tc.Mode == "fuzzy" && rb.BookingMode == string(models.DomainService) {
		trace = append(trace, "fuzzy time rejected for service bookings")
		return models.ReasonMissingTimeFuzzy, trace
	}
	if !policy.AllowConstraintOnlyTime && rb.TimeConstraint != nil && len(rb.TimeRefs) == 0 {
		trace = append(trace, "constraint-only time disabled by policy")
		return models.ReasonPolicyConstraintOnlyTime, trace
	}
	return "", trace
}

// dateAnchors extracts the start and distinct end anchor of a
// reservation from absolute refs or an explicit range.
func dateAnchors(rb *models.ResolvedBooking) (string, string) {
	if rb.DateRange != nil && rb.DateRange.Start != "" && rb.DateRange.End != "" {
		return rb.DateRange.Start, rb.DateRange.End
	}
	var start, end string
	if len(rb.DateRefs) > 0 {
		start = rb.DateRefs[0]
	}
	if len(rb.DateRefs) > 1 {
		end = rb.DateRefs[len(rb.DateRefs)-1]
	}
	return start, end
}

// effectiveTime picks the time the plan will execute with: constraint
// first, then exact refs, then window, then range.
func effectiveTime(rb *models.ResolvedBooking) *models.EffectiveTime {
	if tc := rb.TimeConstraint; tc != nil && tc.Mode == models.TimeModeExact && tc.Resolved() != "" {
		return &models.EffectiveTime{Mode: models.TimeModeExact, Source: "constraint", Start: tc.Resolved()}
	}
	if rb.TimeMode == models.TimeModeExact && len(rb.TimeRefs) > 0 {
		return &models.EffectiveTime{Mode: models.TimeModeExact, Source: "primary", Start: rb.TimeRefs[0]}
	}
	if rb.TimeMode == models.TimeModeWindow && len(rb.TimeRefs) > 0 {
		et := &models.EffectiveTime{Mode: models.TimeModeWindow, Source: "window", Start: rb.TimeRefs[0]}
		if len(rb.TimeRefs) > 1 {
			et.End = rb.TimeRefs[len(rb.TimeRefs)-1]
		}
		return et
	}
	if rb.TimeMode == models.TimeModeRange && len(rb.TimeRefs) > 0 {
		return &models.EffectiveTime{Mode: models.TimeModeExact, Source: "primary", Start: rb.TimeRefs[0]}
	}
	if tc := rb.TimeConstraint; tc != nil && tc.Resolved() != "" {
		return &models.EffectiveTime{Mode: models.TimeModeExact, Source: "constraint", Start: tc.Resolved()}
	}
	return nil
}

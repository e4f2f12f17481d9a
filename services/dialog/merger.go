package dialog

import (
	"sort"
	"strings"

	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// MergeTurn combines the persisted session with the fresh provider
// response and returns a response whose slots and missing slots reflect
// the merger's understanding, plus the slots extracted from this turn
// alone (used downstream to derive the modification context). Session
// slots are never deleted; provider values may refine them.
//
// The caller must reset the session on a true intent change before
// calling; the merger only reconciles UNKNOWN or matching intents.
func MergeTurn(sess *models.Session, resp *models.NLUResponse) (*models.NLUResponse, models.Slots) {
	logger := utils.GetLogger()
	merged := resp.Clone()
	if merged.Slots == nil {
		merged.Slots = models.Slots{}
	}

	continuing := sess != nil && sess.Intent != "" && sess.Status != models.StatusReady

	// 1. Intent reconciliation.
	if continuing {
		switch merged.Intent.Name {
		case models.IntentUnknown, sess.Intent:
			merged.Intent.Name = sess.Intent
		default:
			logger.Error("merger called across an intent change without a session reset",
				zap.String("session_intent", string(sess.Intent)),
				zap.String("provider_intent", string(merged.Intent.Name)))
			merged.Intent.Name = sess.Intent
		}
	}

	// 2–4. Slot extraction, time normalization, role-tagged dates.
	extractProviderSlots(merged)
	providerSlots := merged.Slots.Clone()

	// 5. Non-destructive merge.
	var sessionSlots models.Slots
	if sess != nil {
		sessionSlots = sess.Slots
	}
	mergedSlots := sessionSlots.Clone()
	if mergedSlots == nil {
		mergedSlots = models.Slots{}
	}
	for k, v := range merged.Slots {
		if v != nil {
			mergedSlots[k] = v
		}
	}
	for k, v := range sessionSlots {
		if v == nil {
			continue
		}
		if _, ok := mergedSlots[k]; !ok {
			logger.Error("merge lost a session slot, restoring", zap.String("slot", k))
			mergedSlots[k] = v
		}
	}

	// 6. Service re-injection so execution readiness still sees the
	// service collected on a previous turn.
	if merged.Intent.Name == models.IntentCreateAppointment {
		if svc, ok := mergedSlots.GetString(models.SlotServiceID); ok && svc != "" {
			if merged.Booking == nil {
				merged.Booking = &models.BookingPayload{}
			}
			if len(merged.Booking.Services) == 0 {
				merged.Booking.Services = []models.ServiceRef{{Text: svc}}
			}
		}
	}

	// 7. Missing-slot recomputation. The provider's missing_slots list
	// is advisory only.
	var sessionMissing []string
	if sess != nil {
		sessionMissing = sess.MissingSlots
	}
	newMissing := recomputeMissing(sessionMissing, resp.MissingSlots, mergedSlots, merged.Intent.Name)

	merged.Slots = mergedSlots
	merged.MissingSlots = newMissing

	// 8. Intent-change invariant.
	if continuing && merged.Intent.Name != sess.Intent {
		logger.Error("merged intent diverged from session intent",
			zap.String("session_intent", string(sess.Intent)),
			zap.String("merged_intent", string(merged.Intent.Name)))
		merged.Intent.Name = sess.Intent
	}
	return merged, providerSlots
}

// extractProviderSlots pulls slot values out of the response's issues,
// semantic trace and booking payload into resp.Slots. Direct slots win;
// role-tagged dates beat bare date refs; entities beat the booking
// payload. Dates are stripped of any time component.
func extractProviderSlots(resp *models.NLUResponse) {
	slots := resp.Slots
	rb := resp.ResolvedBooking()

	// Issue payloads sometimes carry the value that failed validation.
	for _, key := range []string{models.SlotDate, models.SlotStartDate, models.SlotEndDate} {
		if slots.Has(key) {
			continue
		}
		if issue, ok := resp.Issues[key].(map[string]interface{}); ok {
			if v, ok := issue["value"].(string); ok && v != "" {
				slots[key] = dateOnly(v)
			}
		}
	}

	// Time normalization: a dict-shaped time collapses to its start.
	if t, ok := slots[models.SlotTime].(map[string]interface{}); ok {
		if start, ok := t["start"].(string); ok && start != "" {
			slots[models.SlotTime] = start
		} else {
			delete(slots, models.SlotTime)
		}
	}
	if !slots.Has(models.SlotTime) && rb != nil {
		if v := rb.TimeConstraint.Resolved(); v != "" {
			slots[models.SlotTime] = v
		} else if len(rb.TimeRefs) > 0 && rb.TimeRefs[0] != "" {
			slots[models.SlotTime] = rb.TimeRefs[0]
		}
	}

	// Role-tagged date promotion from the semantic trace.
	if rb != nil && len(rb.DateRefs) > 0 {
		first := dateOnly(rb.DateRefs[0])
		last := dateOnly(rb.DateRefs[len(rb.DateRefs)-1])
		if rb.HasDateRole(models.DateRoleStart) && !slots.Has(models.SlotStartDate) {
			slots[models.SlotStartDate] = first
		}
		if rb.HasDateRole(models.DateRoleEnd) && !slots.Has(models.SlotEndDate) {
			slots[models.SlotEndDate] = last
		}
		switch rb.DateMode {
		case models.DateModeSingleDay:
			if !slots.Has(models.SlotStartDate) && !slots.Has(models.SlotDate) {
				slots[models.SlotDate] = first
			}
		case models.DateModeRange:
			if len(rb.DateRefs) >= 2 {
				if !slots.Has(models.SlotStartDate) {
					slots[models.SlotStartDate] = first
				}
				if !slots.Has(models.SlotEndDate) {
					slots[models.SlotEndDate] = last
				}
			} else if !slots.Has(models.SlotStartDate) {
				slots[models.SlotStartDate] = first
			}
		}
	}

	// Entity fallbacks.
	entityValue := func(key string) string {
		if rb != nil && rb.Entities[key] != "" {
			return rb.Entities[key]
		}
		return resp.Entities[key]
	}
	if !slots.Has(models.SlotDate) {
		if v := entityValue("date"); v != "" {
			slots[models.SlotDate] = dateOnly(v)
		}
	}
	if !slots.Has(models.SlotTime) {
		if v := entityValue("time"); v != "" {
			slots[models.SlotTime] = v
		}
	}

	// Booking payload is the weakest source.
	if !slots.Has(models.SlotDate) && resp.Booking != nil {
		if resp.Booking.DatetimeRange != nil && resp.Booking.DatetimeRange.Start != "" {
			slots[models.SlotDate] = dateOnly(resp.Booking.DatetimeRange.Start)
		} else if resp.Booking.Date != "" {
			slots[models.SlotDate] = dateOnly(resp.Booking.Date)
		}
	}

	// A single service mention seeds service_id. An alias-annotated
	// mention carries the tenant service id and wins outright; the
	// decision layer re-validates either way.
	if !slots.Has(models.SlotServiceID) {
		if rb != nil {
			for _, svc := range rb.Services {
				if svc.AnnotationType == models.AnnotationAlias && svc.TenantServiceID != "" {
					slots[models.SlotServiceID] = svc.TenantServiceID
					break
				}
			}
		}
		if !slots.Has(models.SlotServiceID) && resp.Booking != nil && len(resp.Booking.Services) == 1 && resp.Booking.Services[0].Text != "" {
			slots[models.SlotServiceID] = resp.Booking.Services[0].Text
		}
	}
}

// satisfiers returns the merged-slot keys whose presence clears a
// missing-slot entry.
func satisfiers(missing string, intent models.Intent) []string {
	switch missing {
	case models.SlotDate:
		if intent == models.IntentCreateReservation {
			return []string{models.SlotDate, models.SlotStartDate}
		}
		return []string{models.SlotDate}
	case models.SlotStartDate:
		return []string{models.SlotDate, models.SlotStartDate}
	case models.SlotEndDate:
		return []string{models.SlotEndDate}
	case models.SlotTime:
		return []string{models.SlotTime}
	case models.SlotDateRange:
		return []string{models.SlotDate, models.SlotDateRange, models.SlotStartDate, models.SlotEndDate}
	default:
		return []string{missing}
	}
}

func satisfied(missing string, slots models.Slots, intent models.Intent) bool {
	for _, k := range satisfiers(missing, intent) {
		if slots.Has(k) {
			return true
		}
	}
	return false
}

// recomputeMissing derives the turn's missing list: session entries now
// satisfied are dropped, still-unsatisfied provider entries are added,
// and MODIFY_BOOKING lists are normalized to planning slots.
func recomputeMissing(sessionMissing, providerMissing []string, slots models.Slots, intent models.Intent) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(sessionMissing)+len(providerMissing))
	for _, m := range sessionMissing {
		if satisfied(m, slots, intent) || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	for _, m := range providerMissing {
		if satisfied(m, slots, intent) || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	out = normalizeModifyBookingMissingSlots(out, intent)
	sort.Strings(out)
	return out
}

// normalizeModifyBookingMissingSlots keeps only planning slots for
// MODIFY_BOOKING: execution-only datetime variants and the synthetic
// "change" entry are stripped.
func normalizeModifyBookingMissingSlots(missing []string, intent models.Intent) []string {
	if intent != models.IntentModifyBooking {
		return missing
	}
	keep := map[string]bool{
		models.SlotBookingID: true,
		models.SlotDate:      true,
		models.SlotTime:      true,
		models.SlotStartDate: true,
		models.SlotEndDate:   true,
	}
	out := missing[:0]
	for _, m := range missing {
		if keep[m] {
			out = append(out, m)
		}
	}
	return out
}

// dateOnly strips any time component from an ISO date or datetime.
func dateOnly(v string) string {
	if i := strings.IndexAny(v, "T "); i > 0 {
		return v[:i]
	}
	return v
}

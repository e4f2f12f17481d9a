package dialog

import (
	"concierge/models"
)

// Planning required slots per intent. These drive missing-slot
// computation; execution-required slots are the backend's concern.
var planningSlots = map[models.Intent][]string{
	models.IntentCreateAppointment: {models.SlotServiceID, models.SlotDate, models.SlotTime},
	models.IntentCreateReservation: {models.SlotServiceID, models.SlotStartDate, models.SlotEndDate},
	models.IntentCancelBooking:     {models.SlotBookingID},
}

// RequiredPlanningSlots returns the ordered slot set an intent needs to
// advance to READY. For MODIFY_BOOKING the set is narrowed by the
// modification context when present, else by which dimensions the user
// has supplied this conversation.
func RequiredPlanningSlots(intent models.Intent, domain models.Domain, collected models.Slots, mc *models.ModificationContext) []string {
	if intent == models.IntentModifyBooking {
		if domain == models.DomainReservation {
			return modifyReservationSlots(collected, mc)
		}
		return modifyAppointmentSlots(collected, mc)
	}
	if req, ok := planningSlots[intent]; ok {
		return append([]string(nil), req...)
	}
	return nil
}

// modifyAppointmentSlots applies the service-domain narrowing table.
// The modification context is authoritative; collected slots only break
// ties when it is absent.
func modifyAppointmentSlots(collected models.Slots, mc *models.ModificationContext) []string {
	if !mc.Empty() {
		switch {
		case mc.ModifyingTime && !mc.ModifyingDate:
			return []string{models.SlotBookingID, models.SlotTime}
		case mc.ModifyingDate && !mc.ModifyingTime:
			return []string{models.SlotBookingID, models.SlotDate}
		default:
			return []string{models.SlotBookingID, models.SlotDate, models.SlotTime}
		}
	}

	hasTime := collected.Has(models.SlotTime)
	hasDate := collected.Has(models.SlotDate)
	switch {
	case hasTime && !hasDate:
		return []string{models.SlotBookingID, models.SlotTime}
	case hasDate && !hasTime:
		return []string{models.SlotBookingID, models.SlotDate}
	default:
		// Both or neither supplied: require the full set.
		return []string{models.SlotBookingID, models.SlotDate, models.SlotTime}
	}
}

// modifyReservationSlots mirrors the appointment narrowing using
// start/end dates. A generic date does not satisfy either endpoint.
func modifyReservationSlots(collected models.Slots, mc *models.ModificationContext) []string {
	if !mc.Empty() {
		switch {
		case mc.ModifyingStartDate && !mc.ModifyingEndDate:
			return []string{models.SlotBookingID, models.SlotStartDate}
		case mc.ModifyingEndDate && !mc.ModifyingStartDate:
			return []string{models.SlotBookingID, models.SlotEndDate}
		default:
			return []string{models.SlotBookingID, models.SlotStartDate, models.SlotEndDate}
		}
	}

	hasStart := collected.Has(models.SlotStartDate)
	hasEnd := collected.Has(models.SlotEndDate)
	switch {
	case hasStart && !hasEnd:
		return []string{models.SlotBookingID, models.SlotStartDate}
	case hasEnd && !hasStart:
		return []string{models.SlotBookingID, models.SlotEndDate}
	default:
		return []string{models.SlotBookingID, models.SlotStartDate, models.SlotEndDate}
	}
}

// Domain-valid slot sets. Cross-domain leakage (a service-domain date
// satisfying a reservation start_date) is a bug the filter exists to
// prevent.
var serviceDomainSlots = map[string]bool{
	models.SlotServiceID:   true,
	models.SlotDate:        true,
	models.SlotTime:        true,
	models.SlotHasDatetime: true,
	models.SlotDateRange:   true,
	models.SlotBookingID:   true,
}

var serviceModifyExtraSlots = map[string]bool{
	models.SlotStartDate: true,
	models.SlotEndDate:   true,
	models.SlotDuration:  true,
}

var reservationDomainSlots = map[string]bool{
	models.SlotServiceID: true,
	models.SlotStartDate: true,
	models.SlotEndDate:   true,
	models.SlotDateRange: true,
	models.SlotBookingID: true,
}

// DomainSlotSet returns the slot keys valid for the intent's domain.
func DomainSlotSet(intent models.Intent, domain models.Domain) map[string]bool {
	if domain == models.DomainReservation {
		return reservationDomainSlots
	}
	if intent == models.IntentModifyBooking {
		set := make(map[string]bool, len(serviceDomainSlots)+len(serviceModifyExtraSlots))
		for k := range serviceDomainSlots {
			set[k] = true
		}
		for k := range serviceModifyExtraSlots {
			set[k] = true
		}
		return set
	}
	return serviceDomainSlots
}

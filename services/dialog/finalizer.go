package dialog

import (
	"sort"

	"concierge/models"
)

// FinalizeTurn computes the turn's effective view: required and missing
// slots, the awaiting-slot transition and the base status. The missing
// list it produces is authoritative; nothing downstream recomputes it.
//
// effective must already be domain-filtered; currentTurn carries the
// slots the provider extracted this turn (not inherited ones), used to
// derive the modification context for MODIFY_BOOKING.
func FinalizeTurn(intent models.Intent, domain models.Domain, effective, currentTurn models.Slots, awaitingBefore string) models.TurnState {
	var mc *models.ModificationContext
	if intent == models.IntentModifyBooking {
		mc = deriveModificationContext(domain, currentTurn)
	}

	required := RequiredPlanningSlots(intent, domain, effective, mc)

	missing := make([]string, 0, len(required))
	for _, slot := range required {
		if !effective.Has(slot) {
			missing = append(missing, slot)
		}
	}
	sort.Strings(missing)

	awaitingAfter := awaitingBefore
	switch {
	case awaitingBefore != "" && effective.Has(awaitingBefore):
		// Satisfied this turn.
		awaitingAfter = ""
	case len(missing) == 1:
		awaitingAfter = missing[0]
	}
	// Otherwise the awaited slot stays pending, even when the missing
	// list happens to be empty.

	status := models.StatusNeedsClarification
	if len(missing) == 0 && awaitingAfter == "" {
		status = models.StatusReady
	}

	return models.TurnState{
		Intent:                  intent,
		EffectiveCollectedSlots: effective,
		RequiredSlots:           required,
		MissingSlots:            missing,
		AwaitingSlotBefore:      awaitingBefore,
		AwaitingSlotAfter:       awaitingAfter,
		Status:                  status,
	}
}

// deriveModificationContext infers which dimensions a MODIFY_BOOKING
// turn is changing from the slots supplied this turn.
func deriveModificationContext(domain models.Domain, currentTurn models.Slots) *models.ModificationContext {
	if currentTurn == nil {
		return nil
	}
	mc := &models.ModificationContext{}
	if domain == models.DomainReservation {
		mc.ModifyingStartDate = currentTurn.Has(models.SlotStartDate)
		mc.ModifyingEndDate = currentTurn.Has(models.SlotEndDate)
	} else {
		mc.ModifyingDate = currentTurn.Has(models.SlotDate)
		mc.ModifyingTime = currentTurn.Has(models.SlotTime)
	}
	if mc.Empty() {
		return nil
	}
	return mc
}

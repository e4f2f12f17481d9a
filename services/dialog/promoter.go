package dialog

import (
	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// PromoteSlots adds derived slots for the intent. It is pure, additive
// and idempotent: input keys are always a subset of output keys and no
// existing key is ever overwritten. The semantic trace supplies date
// roles for reservation promotion.
func PromoteSlots(slots models.Slots, intent models.Intent, rb *models.ResolvedBooking) models.Slots {
	out := slots.Clone()

	switch intent {
	case models.IntentCreateReservation:
		promoteReservation(out, rb)
	case models.IntentCreateAppointment:
		promoteAppointment(out)
	}

	restoreDroppedKeys(slots, out, intent)
	return out
}

func promoteReservation(out models.Slots, rb *models.ResolvedBooking) {
	if dr, ok := out.GetDateRange(); ok {
		if !out.Has(models.SlotStartDate) && dr.Start != "" {
			out[models.SlotStartDate] = dr.Start
		}
		if !out.Has(models.SlotEndDate) && dr.End != "" {
			out[models.SlotEndDate] = dr.End
		}
	}

	// A bare date only satisfies an endpoint when the trace tags it
	// with an explicit role.
	if date, ok := out.GetString(models.SlotDate); ok && date != "" {
		if rb.HasDateRole(models.DateRoleStart) && !out.Has(models.SlotStartDate) {
			out[models.SlotStartDate] = date
		}
		if rb.HasDateRole(models.DateRoleEnd) && !out.Has(models.SlotEndDate) {
			out[models.SlotEndDate] = date
		}
	}
}

func promoteAppointment(out models.Slots) {
	if !out.Has(models.SlotDate) {
		if dr, ok := out.GetDateRange(); ok && dr.Start != "" {
			out[models.SlotDate] = dr.Start
		}
	}
	if out.Has(models.SlotDate) && out.Has(models.SlotTime) && !out.Has(models.SlotHasDatetime) {
		out[models.SlotHasDatetime] = true
	}
}

// restoreDroppedKeys re-inserts any input key that disappeared during
// promotion. Promotion never removes keys, so a hit here is a bug.
func restoreDroppedKeys(in, out models.Slots, intent models.Intent) {
	logger := utils.GetLogger()
	for k, v := range in {
		if v == nil {
			continue
		}
		if _, ok := out[k]; !ok {
			logger.Error("promoter dropped an input slot, restoring",
				zap.String("slot", k),
				zap.String("intent", string(intent)))
			out[k] = v
		}
	}
}

package dialog

import (
	"concierge/models"
	"concierge/utils"

	"go.uber.org/zap"
)

// FilterDomainSlots retains only the slot keys valid for the intent's
// domain. Dropped keys are traced at debug level. The filter must never
// silently discard every slot: a non-empty input producing an empty
// output is logged as an error (and surfaced in tests).
func FilterDomainSlots(slots models.Slots, intent models.Intent, domain models.Domain) models.Slots {
	logger := utils.GetLogger()
	valid := DomainSlotSet(intent, domain)

	out := make(models.Slots, len(slots))
	for k, v := range slots {
		if v == nil {
			continue
		}
		if valid[k] {
			out[k] = v
			continue
		}
		logger.Debug("domain filter dropped slot",
			zap.String("slot", k),
			zap.String("intent", string(intent)),
			zap.String("domain", string(domain)))
	}

	if len(slots) > 0 && len(out) == 0 {
		logger.Error("domain filter emptied non-empty slot set",
			zap.Strings("input_slots", slots.Keys()),
			zap.String("intent", string(intent)),
			zap.String("domain", string(domain)))
	}
	return out
}

package dialog

import (
	"concierge/models"
)

// BuildClarification maps the missing set and issue shapes to a
// canonical reason code and an outcome payload. Missing and Ambiguous
// are always present lists.
func BuildClarification(missing []string, issues map[string]interface{}) (string, *models.ClarificationData) {
	reason := reasonForMissing(missing)

	data := &models.ClarificationData{
		Reason:    reason,
		Missing:   append([]string{}, missing...),
		Ambiguous: []interface{}{},
	}

	for key, issue := range issues {
		switch v := issue.(type) {
		case string:
			if v == "ambiguous" {
				data.Ambiguous = append(data.Ambiguous, key)
			}
		case map[string]interface{}:
			// Rich issues (e.g. ambiguous meridiem with candidates)
			// are preserved as structured objects.
			data.Ambiguous = append(data.Ambiguous, v)
		}
	}

	// The generic reason still gets a specific hint in the payload when
	// the missing set names a salient dimension.
	if reason == models.ReasonNeedsClarification && len(missing) > 0 {
		data.Reason = inferReason(missing)
	}
	return reason, data
}

// reasonForMissing applies the canonical missing-set table.
func reasonForMissing(missing []string) string {
	set := map[string]bool{}
	for _, m := range missing {
		set[m] = true
	}
	switch {
	case len(set) == 2 && set[models.SlotStartDate] && set[models.SlotEndDate]:
		return models.ReasonMissingDateRange
	case len(set) == 1 && set[models.SlotStartDate]:
		return models.ReasonMissingStartDate
	case len(set) == 1 && set[models.SlotEndDate]:
		return models.ReasonMissingEndDate
	case len(set) == 1 && set[models.SlotTime]:
		return models.ReasonMissingTime
	case len(set) == 1 && set[models.SlotDate]:
		return models.ReasonMissingDate
	case set[models.SlotTime]:
		return models.ReasonMissingTime
	default:
		return models.ReasonNeedsClarification
	}
}

// inferReason fills data.reason when the table yields nothing specific.
func inferReason(missing []string) string {
	set := map[string]bool{}
	for _, m := range missing {
		set[m] = true
	}
	switch {
	case set[models.SlotTime]:
		return models.ReasonMissingTime
	case set[models.SlotDate]:
		return models.ReasonMissingDate
	case set[models.SlotServiceID]:
		return models.ReasonMissingService
	default:
		return models.ReasonMissingContext
	}
}

package dialog

import (
	"testing"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClarificationReasonTable(t *testing.T) {
	cases := []struct {
		missing []string
		reason  string
	}{
		{[]string{models.SlotStartDate, models.SlotEndDate}, models.ReasonMissingDateRange},
		{[]string{models.SlotStartDate}, models.ReasonMissingStartDate},
		{[]string{models.SlotEndDate}, models.ReasonMissingEndDate},
		{[]string{models.SlotTime}, models.ReasonMissingTime},
		{[]string{models.SlotDate}, models.ReasonMissingDate},
		{[]string{models.SlotDate, models.SlotTime}, models.ReasonMissingTime},
		{[]string{models.SlotServiceID, models.SlotDate}, models.ReasonNeedsClarification},
		{nil, models.ReasonNeedsClarification},
	}

	for _, tc := range cases {
		reason, data := BuildClarification(tc.missing, nil)
		assert.Equal(t, tc.reason, reason, "missing=%v", tc.missing)
		require.NotNil(t, data)
		assert.NotNil(t, data.Missing, "missing must always be a list")
		assert.NotNil(t, data.Ambiguous, "ambiguous must always be a list")
	}
}

func TestClarificationAmbiguousIssues(t *testing.T) {
	issues := map[string]interface{}{
		models.SlotServiceID: "ambiguous",
		models.SlotTime: map[string]interface{}{
			"type":       "ambiguous_meridiem",
			"candidates": []interface{}{"09:00", "21:00"},
		},
		models.SlotDate: "invalid",
	}

	_, data := BuildClarification(nil, issues)

	require.Len(t, data.Ambiguous, 2)
	// The rich issue survives as a structured object.
	var hasStructured bool
	for _, a := range data.Ambiguous {
		if m, ok := a.(map[string]interface{}); ok {
			assert.Equal(t, "ambiguous_meridiem", m["type"])
			hasStructured = true
		}
	}
	assert.True(t, hasStructured)
}

func TestClarificationInferredDataReason(t *testing.T) {
	// service_id plus date has no table entry, so data.reason falls back
	// to the most salient missing dimension.
	reason, data := BuildClarification([]string{models.SlotServiceID, models.SlotDate}, nil)

	assert.Equal(t, models.ReasonNeedsClarification, reason)
	assert.Equal(t, models.ReasonMissingDate, data.Reason)
}

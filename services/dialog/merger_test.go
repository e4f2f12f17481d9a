package dialog

import (
	"testing"

	"concierge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeIsNonDestructive(t *testing.T) {
	sess := &models.Session{
		Intent: models.IntentCreateAppointment,
		Status: models.StatusNeedsClarification,
		Slots: models.Slots{
			models.SlotServiceID: "mens_cut",
			models.SlotDate:      "2026-09-01",
		},
		MissingSlots: []string{models.SlotTime},
	}
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentUnknown},
		Slots:  models.Slots{models.SlotTime: "14:00"},
	}

	merged, providerSlots := MergeTurn(sess, resp)

	assert.Equal(t, models.IntentCreateAppointment, merged.Intent.Name)
	assert.True(t, merged.Slots.Has(models.SlotServiceID))
	assert.True(t, merged.Slots.Has(models.SlotDate))
	assert.True(t, merged.Slots.Has(models.SlotTime))
	assert.Empty(t, merged.MissingSlots)

	// The second return carries only this turn's extraction.
	assert.True(t, providerSlots.Has(models.SlotTime))
	assert.False(t, providerSlots.Has(models.SlotServiceID))
}

func TestMergeProviderRefinesSessionValue(t *testing.T) {
	sess := &models.Session{
		Intent: models.IntentCreateAppointment,
		Status: models.StatusNeedsClarification,
		Slots:  models.Slots{models.SlotDate: "2026-09-01"},
	}
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateAppointment},
		Slots:  models.Slots{models.SlotDate: "2026-09-02"},
	}

	merged, _ := MergeTurn(sess, resp)
	date, _ := merged.Slots.GetString(models.SlotDate)
	assert.Equal(t, "2026-09-02", date)
}

func TestMergeStatelessTurn(t *testing.T) {
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateReservation},
		Slots:  models.Slots{models.SlotStartDate: "2026-09-01"},
	}

	merged, _ := MergeTurn(nil, resp)
	assert.Equal(t, models.IntentCreateReservation, merged.Intent.Name)
	assert.True(t, merged.Slots.Has(models.SlotStartDate))
}

func TestMergeTimeDictCollapsesToStart(t *testing.T) {
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateAppointment},
		Slots: models.Slots{
			models.SlotTime: map[string]interface{}{"start": "14:00", "end": "16:00"},
		},
	}

	merged, _ := MergeTurn(nil, resp)
	tv, _ := merged.Slots.GetString(models.SlotTime)
	assert.Equal(t, "14:00", tv)
}

func TestMergeRoleTaggedDates(t *testing.T) {
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateReservation},
		Slots:  models.Slots{},
		Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
			DateMode:  models.DateModeRange,
			DateRefs:  []string{"2026-09-01T00:00:00", "2026-09-05T00:00:00"},
			DateRoles: []string{models.DateRoleStart, models.DateRoleEnd},
		}},
	}

	merged, _ := MergeTurn(nil, resp)

	start, _ := merged.Slots.GetString(models.SlotStartDate)
	end, _ := merged.Slots.GetString(models.SlotEndDate)
	assert.Equal(t, "2026-09-01", start, "dates must be stripped of time components")
	assert.Equal(t, "2026-09-05", end)
}

func TestMergeSingleDayDate(t *testing.T) {
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateAppointment},
		Slots:  models.Slots{},
		Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
			DateMode: models.DateModeSingleDay,
			DateRefs: []string{"2026-09-01"},
			TimeMode: models.TimeModeExact,
			TimeRefs: []string{"14:00"},
		}},
	}

	merged, _ := MergeTurn(nil, resp)

	date, _ := merged.Slots.GetString(models.SlotDate)
	tv, _ := merged.Slots.GetString(models.SlotTime)
	assert.Equal(t, "2026-09-01", date)
	assert.Equal(t, "14:00", tv)
}

func TestMergeSeedsServiceFromBooking(t *testing.T) {
	resp := &models.NLUResponse{
		Intent:  models.IntentGuess{Name: models.IntentCreateAppointment},
		Slots:   models.Slots{},
		Booking: &models.BookingPayload{Services: []models.ServiceRef{{Text: "mens_cut"}}},
	}

	merged, _ := MergeTurn(nil, resp)
	svc, _ := merged.Slots.GetString(models.SlotServiceID)
	assert.Equal(t, "mens_cut", svc)
}

func TestMergeSeedsServiceFromAliasAnnotation(t *testing.T) {
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCreateAppointment},
		Slots:  models.Slots{},
		Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
			Services: []models.ResolvedService{{
				Text:            "gentleman's trim",
				AnnotationType:  models.AnnotationAlias,
				TenantServiceID: "mens_cut",
			}},
		}},
	}

	merged, _ := MergeTurn(nil, resp)
	svc, _ := merged.Slots.GetString(models.SlotServiceID)
	assert.Equal(t, "mens_cut", svc)
}

func TestMergeRecomputesMissing(t *testing.T) {
	sess := &models.Session{
		Intent:       models.IntentCreateReservation,
		Status:       models.StatusNeedsClarification,
		Slots:        models.Slots{},
		MissingSlots: []string{models.SlotDate, models.SlotEndDate},
	}
	// start_date satisfies a reservation's pending "date" entry.
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentUnknown},
		Slots:  models.Slots{models.SlotStartDate: "2026-09-01"},
	}

	merged, _ := MergeTurn(sess, resp)
	assert.Equal(t, []string{models.SlotEndDate}, merged.MissingSlots)
}

func TestMergeNormalizesModifyBookingMissing(t *testing.T) {
	resp := &models.NLUResponse{
		Intent:       models.IntentGuess{Name: models.IntentModifyBooking},
		Slots:        models.Slots{},
		MissingSlots: []string{"change", models.SlotBookingID, models.SlotDatetimeRange, models.SlotTime},
	}

	merged, _ := MergeTurn(nil, resp)
	assert.Equal(t, []string{models.SlotBookingID, models.SlotTime}, merged.MissingSlots)
}

func TestMergeForcesSessionIntent(t *testing.T) {
	// A diverging provider intent without a prior session reset is a
	// caller bug; the merger keeps the session intent rather than
	// corrupting the conversation.
	sess := &models.Session{
		Intent: models.IntentCreateAppointment,
		Status: models.StatusNeedsClarification,
		Slots:  models.Slots{},
	}
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentCancelBooking},
		Slots:  models.Slots{},
	}

	merged, _ := MergeTurn(sess, resp)
	assert.Equal(t, models.IntentCreateAppointment, merged.Intent.Name)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	sess := &models.Session{
		Intent: models.IntentCreateAppointment,
		Status: models.StatusNeedsClarification,
		Slots:  models.Slots{models.SlotDate: "2026-09-01"},
	}
	resp := &models.NLUResponse{
		Intent: models.IntentGuess{Name: models.IntentUnknown},
		Slots:  models.Slots{models.SlotTime: "14:00"},
	}

	_, _ = MergeTurn(sess, resp)

	require.Len(t, sess.Slots, 1)
	assert.Equal(t, models.IntentUnknown, resp.Intent.Name)
}

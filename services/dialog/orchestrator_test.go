package dialog

import (
	"context"
	"errors"
	"testing"
	"time"

	"concierge/models"
	"concierge/services/execution"
	"concierge/services/nlu"
	"concierge/services/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNLU struct {
	responses []*models.NLUResponse
	errs      []error
	calls     int
}

func (f *fakeNLU) Resolve(_ context.Context, _ nlu.ResolveRequest) (*models.NLUResponse, error) {
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return f.responses[i], nil
}

type dispatchCall struct {
	action  string
	facts   *models.OutcomeFacts
	booking *models.BookingPayload
}

type fakeBackend struct {
	calls  []dispatchCall
	result *execution.DispatchResult
	err    error
}

func (f *fakeBackend) Dispatch(_ context.Context, action string, facts *models.OutcomeFacts, booking *models.BookingPayload) (*execution.DispatchResult, error) {
	f.calls = append(f.calls, dispatchCall{action: action, facts: facts, booking: booking})
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeReminders struct {
	scheduled []models.ReminderPayload
}

func (f *fakeReminders) Schedule(p models.ReminderPayload) {
	f.scheduled = append(f.scheduled, p)
}

func newTestService(nluFake *fakeNLU, backend *fakeBackend, reminders *fakeReminders) (*DefaultDialogService, *session.MemoryStore) {
	store := session.NewMemoryStore()
	svc := &DefaultDialogService{
		Sessions:   store,
		NLU:        nluFake,
		Backend:    backend,
		Reminders:  reminders,
		Resolver:   NewIntentResolver(testSignalsConfig()),
		Planner:    NewPlanBuilder(testExecutionConfig()),
		Policy:     openPolicy,
		SessionTTL: 30 * time.Minute,
	}
	return svc, store
}

func appointmentTurnRequest() models.TurnRequest {
	return models.TurnRequest{
		UserID:        "u1",
		Text:          "book me a trim",
		TenantContext: salonTenant(),
	}
}

func TestTurnMultiTurnAppointment(t *testing.T) {
	nluFake := &fakeNLU{responses: []*models.NLUResponse{
		{
			Intent: models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
			Slots:  models.Slots{},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				Services: []models.ResolvedService{{
					Text: "trim", AnnotationType: models.AnnotationAlias, TenantServiceID: "mens_cut",
				}},
				DateMode: models.DateModeSingleDay,
				DateRefs: []string{"2026-09-01"},
			}},
		},
		{
			Intent: models.IntentGuess{Name: models.IntentUnknown},
			Slots:  models.Slots{models.SlotTime: "14:00"},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				TimeMode: models.TimeModeExact,
				TimeRefs: []string{"14:00"},
			}},
		},
	}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted, BookingCode: "BK-1"}}
	reminders := &fakeReminders{}
	svc, store := newTestService(nluFake, backend, reminders)
	ctx := context.Background()

	// Turn 1: service and date collected, time still missing.
	resp, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Outcome)
	assert.Equal(t, models.StatusNeedsClarification, resp.Outcome.Status)
	assert.Equal(t, models.ReasonMissingTime, resp.Outcome.ClarificationReason)
	assert.Equal(t, "clarify/missing_time", resp.Outcome.TemplateKey)
	assert.Equal(t, models.SlotTime, resp.Outcome.AwaitingSlot)
	assert.Empty(t, backend.calls)

	sess, err := store.Get(ctx, "u1", models.DomainService)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.IntentCreateAppointment, sess.Intent)
	assert.Equal(t, []string{models.SlotTime}, sess.MissingSlots)
	assert.Equal(t, models.SlotTime, sess.AwaitingSlot)

	// Turn 2: the time arrives; the turn executes and the session clears.
	req := appointmentTurnRequest()
	req.Text = "2pm works"
	resp, err = svc.ProcessTurn(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.StatusExecuted, resp.Outcome.Status)
	assert.Equal(t, "BK-1", resp.Outcome.BookingCode)
	assert.Equal(t, "confirmed", resp.Outcome.Booking.ConfirmationState)

	require.Len(t, backend.calls, 1)
	call := backend.calls[0]
	assert.Equal(t, "create_appointment", call.action)
	svcID, _ := call.facts.Slots.GetString(models.SlotServiceID)
	assert.Equal(t, "mens_cut", svcID, "tenant-resolved service id flows into execution facts")

	sess, err = store.Get(ctx, "u1", models.DomainService)
	require.NoError(t, err)
	assert.Nil(t, sess, "session must clear after execution")

	require.Len(t, reminders.scheduled, 1)
	assert.Equal(t, "BK-1", reminders.scheduled[0].BookingCode)
	assert.Equal(t, "2026-09-01", reminders.scheduled[0].Date)
}

func TestTurnAwaitingSlotSurvivesDateChange(t *testing.T) {
	// The engine asked for a time; the user changes the date instead.
	// The date refines, but the turn keeps waiting on the time.
	nluFake := &fakeNLU{responses: []*models.NLUResponse{
		{
			Intent: models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
			Slots:  models.Slots{},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				Services: []models.ResolvedService{{
					Text: "trim", AnnotationType: models.AnnotationAlias, TenantServiceID: "mens_cut",
				}},
				DateMode: models.DateModeSingleDay,
				DateRefs: []string{"2026-09-01"},
			}},
		},
		{
			Intent: models.IntentGuess{Name: models.IntentUnknown},
			Slots:  models.Slots{models.SlotDate: "2026-09-02"},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				DateMode: models.DateModeSingleDay,
				DateRefs: []string{"2026-09-02"},
			}},
		},
	}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted}}
	svc, store := newTestService(nluFake, backend, &fakeReminders{})
	ctx := context.Background()

	resp, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)
	require.Equal(t, models.SlotTime, resp.Outcome.AwaitingSlot)

	req := appointmentTurnRequest()
	req.Text = "actually make it the 2nd"
	resp, err = svc.ProcessTurn(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.StatusNeedsClarification, resp.Outcome.Status)
	assert.Equal(t, models.SlotTime, resp.Outcome.AwaitingSlot)
	assert.Equal(t, models.ReasonMissingTime, resp.Outcome.ClarificationReason)
	assert.Empty(t, backend.calls)

	sess, err := store.Get(ctx, "u1", models.DomainService)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.SlotTime, sess.AwaitingSlot)
	assert.Equal(t, []string{models.SlotTime}, sess.MissingSlots)
	date, _ := sess.Slots.GetString(models.SlotDate)
	assert.Equal(t, "2026-09-02", date, "the new date replaces the old one")
}

func TestTurnReservationSingleShot(t *testing.T) {
	tenant := &models.TenantContext{
		TenantID:    "lodge-1",
		BookingMode: string(models.DomainReservation),
		Aliases:     map[string]string{"deluxe_room": "room"},
	}
	nluFake := &fakeNLU{responses: []*models.NLUResponse{{
		Intent: models.IntentGuess{Name: models.IntentCreateReservation, Confidence: 0.9},
		Slots:  models.Slots{},
		Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
			Services: []models.ResolvedService{{
				Text: "deluxe room", AnnotationType: models.AnnotationAlias, TenantServiceID: "deluxe_room",
			}},
			DateMode:  models.DateModeRange,
			DateRefs:  []string{"2026-09-01", "2026-09-05"},
			DateRoles: []string{models.DateRoleStart, models.DateRoleEnd},
		}},
	}}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted, BookingCode: "RES-7"}}
	reminders := &fakeReminders{}
	svc, store := newTestService(nluFake, backend, reminders)
	// The test execution config lacks CREATE_RESERVATION; give it one.
	svc.Planner = NewPlanBuilder(&ExecutionConfig{Intents: map[string]IntentExecution{
		"CREATE_RESERVATION": {Commit: ActionRef{Action: "create_reservation"}},
	}})
	ctx := context.Background()

	resp, err := svc.ProcessTurn(ctx, models.TurnRequest{
		UserID: "u2", Text: "a deluxe room sept 1 to 5", TenantContext: tenant,
	})
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.StatusExecuted, resp.Outcome.Status)

	require.Len(t, backend.calls, 1)
	assert.Equal(t, "create_reservation", backend.calls[0].action)
	start, _ := backend.calls[0].facts.Slots.GetString(models.SlotStartDate)
	end, _ := backend.calls[0].facts.Slots.GetString(models.SlotEndDate)
	assert.Equal(t, "2026-09-01", start)
	assert.Equal(t, "2026-09-05", end)

	sess, _ := store.Get(ctx, "u2", models.DomainReservation)
	assert.Nil(t, sess)

	require.Len(t, reminders.scheduled, 1)
	assert.Equal(t, "2026-09-01", reminders.scheduled[0].StartDate)
}

func TestTurnIntentChangeResetsSession(t *testing.T) {
	nluFake := &fakeNLU{responses: []*models.NLUResponse{
		{
			Intent: models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
			Slots:  models.Slots{models.SlotDate: "2026-09-01"},
		},
		{
			Intent: models.IntentGuess{Name: models.IntentCancelBooking, Confidence: 0.9},
			Slots:  models.Slots{},
		},
	}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted}}
	svc, store := newTestService(nluFake, backend, &fakeReminders{})
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)

	req := appointmentTurnRequest()
	req.Text = "actually cancel my booking"
	resp, err := svc.ProcessTurn(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)

	// The cancel turn starts fresh: booking_id is missing, so the turn
	// clarifies and the persisted session now carries the new intent.
	assert.Equal(t, models.StatusNeedsClarification, resp.Outcome.Status)
	assert.Equal(t, models.IntentCancelBooking, resp.Outcome.IntentName)
	assert.Empty(t, backend.calls)

	sess, err := store.Get(ctx, "u1", models.DomainService)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.IntentCancelBooking, sess.Intent)
	assert.Equal(t, []string{models.SlotBookingID}, sess.MissingSlots)
	assert.False(t, sess.Slots.Has(models.SlotDate), "slots from the abandoned intent must not leak")
}

func TestTurnContextualUpdateKeepsSession(t *testing.T) {
	// The provider mislabels "make it 3pm" as MODIFY_BOOKING; since the
	// turn only adjusts a mutable slot of the live create session, the
	// session continues instead of resetting.
	nluFake := &fakeNLU{responses: []*models.NLUResponse{
		{
			Intent: models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
			Slots:  models.Slots{},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				Services: []models.ResolvedService{{
					Text: "trim", AnnotationType: models.AnnotationAlias, TenantServiceID: "mens_cut",
				}},
				DateMode: models.DateModeSingleDay,
				DateRefs: []string{"2026-09-01"},
			}},
		},
		{
			Intent: models.IntentGuess{Name: models.IntentModifyBooking, Confidence: 0.6},
			Slots:  models.Slots{models.SlotTime: "15:00"},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				TimeMode: models.TimeModeExact,
				TimeRefs: []string{"15:00"},
			}},
		},
	}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted, BookingCode: "BK-2"}}
	svc, _ := newTestService(nluFake, backend, &fakeReminders{})
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)

	req := appointmentTurnRequest()
	req.Text = "make it 3pm"
	resp, err := svc.ProcessTurn(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExecuted, resp.Outcome.Status)
	assert.Equal(t, models.IntentCreateAppointment, resp.Outcome.IntentName)
	require.Len(t, backend.calls, 1)
	assert.Equal(t, "create_appointment", backend.calls[0].action)
}

func TestTurnAmbiguousServiceOverridesReadyPlan(t *testing.T) {
	// All planning slots are present, but the turn mentions two distinct
	// service families; the decision verdict wins over the READY plan.
	nluFake := &fakeNLU{responses: []*models.NLUResponse{{
		Intent:  models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
		Slots:   models.Slots{models.SlotDate: "2026-09-01", models.SlotTime: "14:00"},
		Booking: &models.BookingPayload{Services: []models.ServiceRef{{Text: "haircut"}}},
		Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
			Services: []models.ResolvedService{
				{Text: "haircut", Canonical: "haircut"},
				{Text: "beard trim", Canonical: "beard_care"},
			},
			DateMode: models.DateModeSingleDay,
			DateRefs: []string{"2026-09-01"},
			TimeMode: models.TimeModeExact,
			TimeRefs: []string{"14:00"},
		}},
	}}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted}}
	svc, _ := newTestService(nluFake, backend, &fakeReminders{})

	resp, err := svc.ProcessTurn(context.Background(), appointmentTurnRequest())
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.StatusNeedsClarification, resp.Outcome.Status)
	assert.Equal(t, models.ReasonAmbiguousService, resp.Outcome.ClarificationReason)
	assert.Empty(t, backend.calls, "an ambiguous service must never dispatch")
}

func TestTurnExecutionFailureKeepsSession(t *testing.T) {
	nluFake := &fakeNLU{responses: []*models.NLUResponse{
		{
			Intent: models.IntentGuess{Name: models.IntentCreateAppointment, Confidence: 0.9},
			Slots:  models.Slots{},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				Services: []models.ResolvedService{{
					Text: "trim", AnnotationType: models.AnnotationAlias, TenantServiceID: "mens_cut",
				}},
				DateMode: models.DateModeSingleDay,
				DateRefs: []string{"2026-09-01"},
			}},
		},
		{
			Intent: models.IntentGuess{Name: models.IntentUnknown},
			Slots:  models.Slots{models.SlotTime: "14:00"},
			Trace: &models.SemanticTrace{Semantic: &models.ResolvedBooking{
				TimeMode: models.TimeModeExact,
				TimeRefs: []string{"14:00"},
			}},
		},
	}}
	backend := &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusError, Error: "downstream unavailable"}}
	reminders := &fakeReminders{}
	svc, store := newTestService(nluFake, backend, reminders)
	ctx := context.Background()

	_, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)

	req := appointmentTurnRequest()
	req.Text = "2pm"
	resp, err := svc.ProcessTurn(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "EXECUTION_FAILED", resp.Error)

	// The draft survives so the user can retry.
	sess, err := store.Get(ctx, "u1", models.DomainService)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, models.IntentCreateAppointment, sess.Intent)
	assert.Empty(t, reminders.scheduled)
}

func TestTurnNLUFailure(t *testing.T) {
	nluFake := &fakeNLU{errs: []error{errors.New("connection refused")}}
	svc, store := newTestService(nluFake, &fakeBackend{}, &fakeReminders{})
	ctx := context.Background()

	resp, err := svc.ProcessTurn(ctx, appointmentTurnRequest())
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "NLU_UNAVAILABLE", resp.Error)

	sess, _ := store.Get(ctx, "u1", models.DomainService)
	assert.Nil(t, sess, "a failed turn must not persist state")
}

func TestTurnResolverBackstopsUnknownIntent(t *testing.T) {
	nluFake := &fakeNLU{responses: []*models.NLUResponse{{
		Intent: models.IntentGuess{Name: models.IntentUnknown},
		Slots:  models.Slots{},
	}}}
	svc, _ := newTestService(nluFake, &fakeBackend{result: &execution.DispatchResult{Status: execution.StatusExecuted}}, &fakeReminders{})

	req := appointmentTurnRequest()
	req.Text = "I need to cancel my booking"
	resp, err := svc.ProcessTurn(context.Background(), req)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Equal(t, models.IntentCancelBooking, resp.Outcome.IntentName)
	assert.Equal(t, models.StatusNeedsClarification, resp.Outcome.Status)
}

func TestTurnMissingIntentWithoutResolver(t *testing.T) {
	nluFake := &fakeNLU{responses: []*models.NLUResponse{{
		Intent: models.IntentGuess{Name: ""},
		Slots:  models.Slots{},
	}}}
	svc, _ := newTestService(nluFake, &fakeBackend{}, &fakeReminders{})
	svc.Resolver = nil

	resp, err := svc.ProcessTurn(context.Background(), appointmentTurnRequest())
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeMissingIntent, resp.Error)
}

func TestTurnUnsupportedIntentHasNoCommitAction(t *testing.T) {
	// DISCOVERY reaches READY but the execution config maps no action.
	nluFake := &fakeNLU{responses: []*models.NLUResponse{{
		Intent: models.IntentGuess{Name: models.IntentDiscovery, Confidence: 0.9},
		Slots:  models.Slots{},
	}}}
	backend := &fakeBackend{}
	svc, _ := newTestService(nluFake, backend, &fakeReminders{})

	resp, err := svc.ProcessTurn(context.Background(), appointmentTurnRequest())
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ErrCodeUnsupportedIntent, resp.Error)
	assert.Empty(t, backend.calls)
}

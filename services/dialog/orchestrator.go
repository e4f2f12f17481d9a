package dialog

import (
	"context"
	"strings"

	"concierge/models"
	"concierge/services/execution"
	"concierge/services/nlu"
	"concierge/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProcessTurn runs the per-turn pipeline: load session → NLU → merge →
// promote → filter → finalize → decide → plan → execute or clarify →
// persist. It is the sole place reasons become user-facing outcomes.
func (s *DefaultDialogService) ProcessTurn(ctx context.Context, req models.TurnRequest) (*models.TurnResponse, error) {
	logger := utils.GetLogger()

	tenant := req.TenantContext
	tenantDomain := req.Domain
	if tenantDomain == "" {
		tenantDomain = tenant.Domain()
	}

	release := s.locks.acquire(req.UserID, tenantDomain)
	defer release()

	// Session store failures degrade to a stateless turn.
	sess, err := s.Sessions.Get(ctx, req.UserID, tenantDomain)
	if err != nil {
		logger.Error("Session store unavailable, running stateless",
			zap.String("user_id", req.UserID),
			zap.String("domain", string(tenantDomain)),
			zap.Error(err))
		sess = nil
	}

	resp, err := s.NLU.Resolve(ctx, nlu.ResolveRequest{
		UserID:        req.UserID,
		Text:          req.Text,
		Domain:        tenantDomain,
		Timezone:      req.Timezone,
		TenantContext: tenant,
	})
	if err != nil {
		logger.Error("NLU resolve failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nluFailureResponse(), nil
	}
	if resp == nil {
		return nluFailureResponse(), nil
	}
	if resp.Slots == nil {
		resp.Slots = models.Slots{}
	}

	// The rule-based resolver backstops the provider when it has no
	// intent hypothesis.
	if resp.Intent.Name == "" || resp.Intent.Name == models.IntentUnknown {
		bookingMode := ""
		if tenant != nil {
			bookingMode = tenant.BookingMode
		}
		if s.Resolver != nil && (sess == nil || sess.Intent == "") {
			resp.Intent.Name, resp.Intent.Confidence = s.Resolver.Resolve(req.Text, resp.Entities, bookingMode)
		}
	}
	if resp.Intent.Name == "" {
		return errorResponse(models.ErrCodeMissingIntent, "no intent could be resolved"), nil
	}

	// Hard reset on intent change. A contextual update (mutable slots
	// only, no new booking verb) continues the live create session
	// instead.
	if sess != nil && sess.Intent != "" && resp.Intent.Name != models.IntentUnknown && resp.Intent.Name != sess.Intent {
		if isContextualUpdate(sess, resp) {
			resp.Intent.Name = sess.Intent
		} else {
			if err := s.Sessions.Clear(ctx, req.UserID, tenantDomain); err != nil {
				logger.Error("Failed to clear session on intent change", zap.Error(err))
			}
			sess = nil
		}
	}

	merged, providerSlots := MergeTurn(sess, resp)
	intent := merged.Intent.Name
	domain := models.DomainForIntent(intent, tenantDomain)

	// The decision layer needs the conversation's cumulative semantics,
	// not just this turn's: a turn that only supplies a time must not
	// lose the service resolved two turns ago.
	var sessRB *models.ResolvedBooking
	if sess != nil {
		sessRB = sess.ResolvedBookingSemantics
	}
	rb := mergeBookingSemantics(sessRB, resp.ResolvedBooking())

	promoted := PromoteSlots(merged.Slots, intent, rb)
	effective := FilterDomainSlots(promoted, intent, domain)

	awaitingBefore := ""
	if sess != nil {
		awaitingBefore = sess.AwaitingSlot
	}
	ts := FinalizeTurn(intent, domain, effective, providerSlots, awaitingBefore)
	ts.RawProviderSlots = providerSlots
	ts.MergedSessionSlots = merged.Slots
	ts.PromotedSlots = promoted

	// Decision gate for booking-creating intents: tenant-authoritative
	// service resolution plus temporal shape.
	var dec models.DecisionResult
	dec.Status = models.DecisionResolved
	if intent == models.IntentCreateAppointment || intent == models.IntentCreateReservation {
		var trace []string
		dec, trace = Decide(rb, s.Policy, intent, tenant)
		logger.Debug("decision trace", zap.Strings("steps", trace))
		if dec.Status == models.DecisionResolved && dec.TenantServiceID != "" {
			// service_id always carries the tenant alias key.
			effective[models.SlotServiceID] = dec.TenantServiceID
		}
	}
	ts.DecisionReason = dec.Reason

	plan := s.Planner.Plan(intent, merged, ts.MissingSlots, ts.AwaitingSlotAfter)

	status := plan.Status
	if status == models.StatusReady && dec.Status == models.DecisionNeedsClarification {
		status = models.StatusNeedsClarification
	}
	ts.Status = status
	turnID := uuid.New().String()
	logger.Info("turn state", append(ts.LogFields(), zap.String("turn_id", turnID))...)

	var out *models.TurnResponse
	switch status {
	case models.StatusReady:
		out, err = s.executeTurn(ctx, req, tenantDomain, intent, plan, merged, effective, &ts)
		if err != nil {
			return nil, err
		}
	case models.StatusAwaitingConfirmation:
		confirmSess := &models.Session{
			Intent:       intent,
			Slots:        effective,
			MissingSlots: ts.MissingSlots,
			Status:       models.StatusAwaitingConfirmation,
			AwaitingSlot: ts.AwaitingSlotAfter,
		}
		if dec.Status == models.DecisionResolved {
			confirmSess.ResolvedBookingSemantics = rb
		}
		s.persistSession(ctx, req.UserID, tenantDomain, confirmSess)
		out = &models.TurnResponse{
			Success: true,
			Outcome: &models.TurnOutcome{
				Status:       models.StatusAwaitingConfirmation,
				IntentName:   intent,
				ActionName:   firstBlocked(plan),
				Booking:      merged.Booking,
				Slots:        effective,
				Awaiting:     plan.Awaiting,
				AwaitingSlot: plan.AwaitingSlot,
			},
		}
	default:
		out = s.clarifyTurn(ctx, req, tenantDomain, domain, intent, dec, rb, merged, effective, &ts)
	}

	if out != nil && out.Outcome != nil {
		out.Outcome.TurnID = turnID
	}
	return out, nil
}

// mergeBookingSemantics layers this turn's semantic trace over the
// session's. Current-turn fields win; absent dimensions fall back to
// what earlier turns established.
func mergeBookingSemantics(sessRB, cur *models.ResolvedBooking) *models.ResolvedBooking {
	if sessRB == nil {
		return cur
	}
	if cur == nil {
		out := *sessRB
		return &out
	}
	out := *cur
	if len(out.Services) == 0 {
		out.Services = sessRB.Services
	}
	if out.DateMode == "" || out.DateMode == models.DateModeNone {
		out.DateMode = sessRB.DateMode
		if len(out.DateRefs) == 0 {
			out.DateRefs = sessRB.DateRefs
			out.DateRoles = sessRB.DateRoles
		}
	}
	if out.DateRange == nil {
		out.DateRange = sessRB.DateRange
	}
	if out.TimeMode == "" || out.TimeMode == models.TimeModeNone {
		out.TimeMode = sessRB.TimeMode
		if len(out.TimeRefs) == 0 {
			out.TimeRefs = sessRB.TimeRefs
		}
	}
	if out.TimeConstraint == nil {
		out.TimeConstraint = sessRB.TimeConstraint
	}
	if out.BookingMode == "" {
		out.BookingMode = sessRB.BookingMode
	}
	return &out
}

// executeTurn dispatches the commit action and clears the session. A
// failed execution keeps the session so the user can retry.
func (s *DefaultDialogService) executeTurn(ctx context.Context, req models.TurnRequest, domain models.Domain, intent models.Intent, plan PlanResult, merged *models.NLUResponse, effective models.Slots, ts *models.TurnState) (*models.TurnResponse, error) {
	logger := utils.GetLogger()

	if len(plan.AllowedActions) == 0 {
		return errorResponse(models.ErrCodeUnsupportedIntent, "no commit action configured for intent "+string(intent)), nil
	}
	action := plan.AllowedActions[0]

	facts := &models.OutcomeFacts{
		Slots:        effective,
		MissingSlots: ts.MissingSlots,
		Context:      merged.Context,
	}
	result, err := s.Backend.Dispatch(ctx, action, facts, merged.Booking)
	if err != nil || result == nil || result.Status != execution.StatusExecuted {
		if err != nil {
			logger.Error("Execution dispatch failed", zap.String("action", action), zap.Error(err))
		} else if result != nil {
			logger.Error("Execution backend rejected action",
				zap.String("action", action), zap.String("error", result.Error))
		}
		// Session intentionally untouched: the user can retry.
		return &models.TurnResponse{
			Success: false,
			Error:   "EXECUTION_FAILED",
			Message: "booking execution failed, please try again",
			Outcome: &models.TurnOutcome{
				Status:     models.StatusReady,
				IntentName: intent,
				ActionName: action,
				Slots:      effective,
				Facts:      facts,
			},
		}, nil
	}

	if err := s.Sessions.Clear(ctx, req.UserID, domain); err != nil {
		logger.Error("Failed to clear session after execution", zap.Error(err))
	}

	if s.Reminders != nil && intent.ProducesBookingPayload() {
		svc, _ := effective.GetString(models.SlotServiceID)
		date, _ := effective.GetString(models.SlotDate)
		timeVal, _ := effective.GetString(models.SlotTime)
		startDate, _ := effective.GetString(models.SlotStartDate)
		s.Reminders.Schedule(models.ReminderPayload{
			UserID:      req.UserID,
			BookingCode: result.BookingCode,
			IntentName:  intent,
			ServiceID:   svc,
			Date:        date,
			Time:        timeVal,
			StartDate:   startDate,
			PhoneNumber: req.PhoneNumber,
			Email:       req.Email,
		})
	}

	booking := merged.Booking
	if booking == nil {
		booking = &models.BookingPayload{}
	}
	booking.ConfirmationState = "confirmed"

	return &models.TurnResponse{
		Success: true,
		Outcome: &models.TurnOutcome{
			Status:      models.StatusExecuted,
			IntentName:  intent,
			ActionName:  action,
			BookingCode: result.BookingCode,
			Booking:     booking,
			Slots:       effective,
		},
	}, nil
}

// clarifyTurn builds the clarification outcome and persists the session
// so the next turn can complete the draft.
func (s *DefaultDialogService) clarifyTurn(ctx context.Context, req models.TurnRequest, sessionDomain, intentDomain models.Domain, intent models.Intent, dec models.DecisionResult, rb *models.ResolvedBooking, merged *models.NLUResponse, effective models.Slots, ts *models.TurnState) *models.TurnResponse {
	reason, data := BuildClarification(ts.MissingSlots, merged.Issues)
	if dec.Status == models.DecisionNeedsClarification && len(ts.MissingSlots) == 0 {
		reason = dec.Reason
		data.Reason = dec.Reason
	}
	if reason == models.ReasonNeedsClarification && merged.ClarificationReason != "" {
		reason = merged.ClarificationReason
		data.Reason = merged.ClarificationReason
	}

	sess := &models.Session{
		Intent:                   intent,
		Slots:                    effective,
		MissingSlots:             ts.MissingSlots,
		Status:                   models.StatusNeedsClarification,
		AwaitingSlot:             ts.AwaitingSlotAfter,
		ResolvedBookingSemantics: rb,
	}
	if intent == models.IntentModifyBooking {
		sess.ModificationContext = deriveModificationContext(intentDomain, ts.RawProviderSlots)
	}
	s.persistSession(ctx, req.UserID, sessionDomain, sess)

	return &models.TurnResponse{
		Success: true,
		Outcome: &models.TurnOutcome{
			Status:              models.StatusNeedsClarification,
			IntentName:          intent,
			AwaitingSlot:        ts.AwaitingSlotAfter,
			ClarificationReason: reason,
			TemplateKey:         templateKeyFor(reason),
			Data:                data,
			Context:             merged.Context,
			Booking:             merged.Booking,
			Facts: &models.OutcomeFacts{
				Slots:        effective,
				MissingSlots: ts.MissingSlots,
				Context:      merged.Context,
			},
		},
	}
}

// persistSession writes the session, logging loudly on failure but
// never failing the turn.
func (s *DefaultDialogService) persistSession(ctx context.Context, userID string, domain models.Domain, sess *models.Session) {
	if err := s.Sessions.Set(ctx, userID, domain, sess, s.SessionTTL); err != nil {
		utils.GetLogger().Error("Failed to persist dialog session",
			zap.String("user_id", userID),
			zap.String("domain", string(domain)),
			zap.String("intent", string(sess.Intent)),
			zap.Error(err))
	}
}

// isContextualUpdate recognizes a turn that only adjusts mutable slots
// of a live create session without naming a service or a booking verb.
// It is a control flag only and is never persisted as an intent.
func isContextualUpdate(sess *models.Session, resp *models.NLUResponse) bool {
	if sess.Intent != models.IntentCreateAppointment && sess.Intent != models.IntentCreateReservation {
		return false
	}
	if resp.Intent.Name == models.IntentCreateAppointment || resp.Intent.Name == models.IntentCreateReservation {
		// A create intent on a live create session is an intent change
		// only when the modes differ; same-mode turns merge upstream.
		return false
	}
	if resp.Slots.Has(models.SlotServiceID) {
		return false
	}
	mutable := resp.Slots.Has(models.SlotDate) || resp.Slots.Has(models.SlotTime) ||
		resp.Slots.Has(models.SlotDuration) || resp.Slots.Has(models.SlotStartDate) ||
		resp.Slots.Has(models.SlotEndDate)
	return mutable
}

func nluFailureResponse() *models.TurnResponse {
	return &models.TurnResponse{
		Success: false,
		Error:   "NLU_UNAVAILABLE",
		Outcome: &models.TurnOutcome{
			Status:              models.StatusNeedsClarification,
			ClarificationReason: models.ReasonNeedsClarification,
			Data: &models.ClarificationData{
				Reason:    models.ReasonNeedsClarification,
				Missing:   []string{},
				Ambiguous: []interface{}{},
			},
		},
	}
}

func errorResponse(code, msg string) *models.TurnResponse {
	return &models.TurnResponse{
		Success: false,
		Error:   code,
		Message: msg,
		Outcome: &models.TurnOutcome{
			Status:              models.StatusNeedsClarification,
			ClarificationReason: models.ReasonNeedsClarification,
			Data: &models.ClarificationData{
				Reason:    models.ReasonNeedsClarification,
				Missing:   []string{},
				Ambiguous: []interface{}{},
			},
		},
	}
}

func templateKeyFor(reason string) string {
	return "clarify/" + strings.ToLower(reason)
}

func firstBlocked(plan PlanResult) string {
	if len(plan.BlockedActions) > 0 {
		return plan.BlockedActions[0]
	}
	return ""
}

package dialog

import (
	"regexp"
	"strings"

	"concierge/models"
)

// Non-booking intents are tried in this fixed priority order before the
// booking fallback.
var resolutionPriority = []models.Intent{
	models.IntentPayment,
	models.IntentCancelBooking,
	models.IntentModifyBooking,
	models.IntentBookingInquiry,
	models.IntentAvailability,
	models.IntentDetails,
	models.IntentQuote,
	models.IntentDiscovery,
	models.IntentRecommendation,
}

// IntentResolver maps user text and entities to canonical intents with
// deterministic, ordered rules. No ML.
type IntentResolver struct {
	entries map[models.Intent]compiledSignals
}

type compiledSignals struct {
	anyPatterns   []*regexp.Regexp
	allTokenSets  [][]string
	orderedTokens [][]string
	requiredSlots []string
}

var nonWordRe = regexp.MustCompile(`[^a-z0-9\s]+`)
var spaceRe = regexp.MustCompile(`\s+`)

// NewIntentResolver compiles the signal config. Phrase signals become
// whole-word regexes so "book" does not fire inside "booking status".
func NewIntentResolver(cfg *SignalsConfig) *IntentResolver {
	r := &IntentResolver{entries: make(map[models.Intent]compiledSignals)}
	if cfg == nil {
		return r
	}
	for name, entry := range cfg.Intents {
		cs := compiledSignals{requiredSlots: entry.RequiredSlots}
		for _, phrase := range entry.Signals.Any {
			norm := normalizeText(phrase)
			if norm == "" {
				continue
			}
			pattern := `\b` + strings.ReplaceAll(regexp.QuoteMeta(norm), ` `, `\s+`) + `\b`
			cs.anyPatterns = append(cs.anyPatterns, regexp.MustCompile(pattern))
		}
		for _, tokens := range entry.Signals.All {
			cs.allTokenSets = append(cs.allTokenSets, normalizeTokens(tokens))
		}
		for _, tokens := range entry.Signals.Ordered {
			cs.orderedTokens = append(cs.orderedTokens, normalizeTokens(tokens))
		}
		r.entries[models.Intent(name)] = cs
	}
	return r
}

// Resolve returns the canonical intent and a confidence for the
// sentence. Signals pick non-booking intents by priority; otherwise the
// turn is a booking and booking_mode is authoritative for the CREATE_*
// split. Signals never override booking_mode.
func (r *IntentResolver) Resolve(text string, entities map[string]string, bookingMode string) (models.Intent, float64) {
	norm := normalizeText(text)
	tokens := strings.Fields(norm)

	for _, intent := range resolutionPriority {
		cs, ok := r.entries[intent]
		if !ok {
			continue
		}
		if cs.matches(norm, tokens) {
			if cs.hasRequiredEntity(entities) {
				return intent, 0.95
			}
			return intent, 0.85
		}
	}

	intent := models.IntentCreateAppointment
	if bookingMode == string(models.DomainReservation) {
		intent = models.IntentCreateReservation
	}
	if len(entities) > 0 {
		return intent, 0.85
	}
	return intent, 0.75
}

func (cs compiledSignals) matches(norm string, tokens []string) bool {
	for _, p := range cs.anyPatterns {
		if p.MatchString(norm) {
			return true
		}
	}
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	for _, group := range cs.allTokenSets {
		if len(group) > 0 && containsAll(set, group) {
			return true
		}
	}
	for _, group := range cs.orderedTokens {
		if len(group) > 0 && containsOrdered(tokens, group) {
			return true
		}
	}
	return false
}

func (cs compiledSignals) hasRequiredEntity(entities map[string]string) bool {
	for _, slot := range cs.requiredSlots {
		if entities[slot] != "" {
			return true
		}
	}
	return false
}

func containsAll(set map[string]bool, group []string) bool {
	for _, t := range group {
		if !set[t] {
			return false
		}
	}
	return true
}

// containsOrdered checks the group appears as a subsequence of tokens.
func containsOrdered(tokens, group []string) bool {
	i := 0
	for _, t := range tokens {
		if t == group[i] {
			i++
			if i == len(group) {
				return true
			}
		}
	}
	return false
}

func normalizeText(text string) string {
	norm := strings.ToLower(text)
	norm = nonWordRe.ReplaceAllString(norm, " ")
	norm = spaceRe.ReplaceAllString(norm, " ")
	return strings.TrimSpace(norm)
}

func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n := normalizeText(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

package models

import "sort"

// Slot keys form a closed vocabulary. A slot is present only if its key
// is explicitly set; presence is never inferred.
const (
	SlotServiceID     = "service_id"
	SlotDate          = "date"
	SlotTime          = "time"
	SlotStartDate     = "start_date"
	SlotEndDate       = "end_date"
	SlotDateRange     = "date_range"
	SlotDatetimeRange = "datetime_range"
	SlotHasDatetime   = "has_datetime"
	SlotBookingID     = "booking_id"
	SlotDuration      = "duration"
)

// DateRange is the {start,end} struct slot value.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Slots carries collected slot values for a conversation. Values are
// primitive (string / ISO date / ISO datetime / bool / DateRange).
type Slots map[string]interface{}

// Has reports whether the key is explicitly set and non-nil.
func (s Slots) Has(key string) bool {
	if s == nil {
		return false
	}
	v, ok := s[key]
	return ok && v != nil
}

// GetString returns the slot value as a string if it is one.
func (s Slots) GetString(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s[key].(string)
	return v, ok
}

// GetDateRange returns the date_range slot, tolerating both the typed
// struct and the generic map shape produced by JSON round-trips.
func (s Slots) GetDateRange() (DateRange, bool) {
	if s == nil {
		return DateRange{}, false
	}
	switch v := s[SlotDateRange].(type) {
	case DateRange:
		return v, true
	case *DateRange:
		if v != nil {
			return *v, true
		}
	case map[string]interface{}:
		start, _ := v["start"].(string)
		end, _ := v["end"].(string)
		if start != "" || end != "" {
			return DateRange{Start: start, End: end}, true
		}
	}
	return DateRange{}, false
}

// Keys returns the present slot keys, sorted.
func (s Slots) Keys() []string {
	keys := make([]string, 0, len(s))
	for k, v := range s {
		if v == nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a shallow copy. Slot values are treated as immutable.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

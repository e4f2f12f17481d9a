package models

// Intent is the canonical tag for what the user is trying to do.
type Intent string

const (
	IntentCreateAppointment Intent = "CREATE_APPOINTMENT"
	IntentCreateReservation Intent = "CREATE_RESERVATION"
	IntentModifyBooking     Intent = "MODIFY_BOOKING"
	IntentCancelBooking     Intent = "CANCEL_BOOKING"
	IntentBookingInquiry    Intent = "BOOKING_INQUIRY"
	IntentAvailability      Intent = "AVAILABILITY"
	IntentDetails           Intent = "DETAILS"
	IntentQuote             Intent = "QUOTE"
	IntentDiscovery         Intent = "DISCOVERY"
	IntentRecommendation    Intent = "RECOMMENDATION"
	IntentPayment           Intent = "PAYMENT"
	IntentUnknown           Intent = "UNKNOWN"
)

// TemporalShape is the data shape an intent demands from the date/time
// dimension.
type TemporalShape string

const (
	TemporalShapeNone          TemporalShape = ""
	TemporalShapeDatetimeRange TemporalShape = "datetime_range"
	TemporalShapeDateRange     TemporalShape = "date_range"
)

// TemporalShape reports the temporal requirement the intent carries.
func (i Intent) TemporalShape() TemporalShape {
	switch i {
	case IntentCreateAppointment:
		return TemporalShapeDatetimeRange
	case IntentCreateReservation:
		return TemporalShapeDateRange
	default:
		return TemporalShapeNone
	}
}

// ProducesBookingPayload reports whether committing the intent yields a
// booking payload.
func (i Intent) ProducesBookingPayload() bool {
	switch i {
	case IntentCreateAppointment, IntentCreateReservation, IntentModifyBooking:
		return true
	default:
		return false
	}
}

// IsBooking reports whether the intent drives the booking pipeline at
// all (as opposed to informational intents like DISCOVERY).
func (i Intent) IsBooking() bool {
	switch i {
	case IntentCreateAppointment, IntentCreateReservation, IntentModifyBooking, IntentCancelBooking:
		return true
	default:
		return false
	}
}

// Domain distinguishes service appointments from lodging reservations.
type Domain string

const (
	DomainService     Domain = "service"
	DomainReservation Domain = "reservation"
)

// DomainForIntent returns the effective domain for a turn. booking_mode
// pins CREATE_APPOINTMENT to service and CREATE_RESERVATION to
// reservation; every other intent follows the tenant's domain.
func DomainForIntent(intent Intent, tenantDomain Domain) Domain {
	switch intent {
	case IntentCreateAppointment:
		return DomainService
	case IntentCreateReservation:
		return DomainReservation
	default:
		if tenantDomain == "" {
			return DomainService
		}
		return tenantDomain
	}
}

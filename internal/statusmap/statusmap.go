// Package statusmap translates raw gateway statuses into the internal and
// commerce status vocabularies.
package statusmap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/akylbek/payment-system/paydock-notification/internal/models"
)

// Mapping is the triple a raw gateway status resolves to.
type Mapping struct {
	PaydockStatus models.PaydockStatus
	PaymentState  models.CommercePaymentState
	OrderState    models.CommerceOrderState
}

// Canonicalize lower-cases s and upper-cases its first letter. Empty input
// becomes "Undefined".
func Canonicalize(s string) string {
	if s == "" {
		return "Undefined"
	}
	s = strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// MapStatus resolves a raw gateway status. Unknown statuses map to the
// pending/Pending/Open triple.
func MapStatus(raw string, capture bool) Mapping {
	switch strings.ToUpper(Canonicalize(raw)) {
	case "COMPLETE":
		return Mapping{models.StatusPaid, models.PaymentStatePaid, models.OrderStateComplete}
	case "PENDING", "PRE_AUTHENTICATION_PENDING":
		if capture {
			return Mapping{models.StatusPending, models.PaymentStatePending, models.OrderStateOpen}
		}
		return Mapping{models.StatusAuthorize, models.PaymentStatePaid, models.OrderStateOpen}
	case "CANCELLED":
		return Mapping{models.StatusCancelled, models.PaymentStatePaid, models.OrderStateCancelled}
	case "REFUNDED":
		return Mapping{models.StatusRefunded, models.PaymentStatePaid, models.OrderStateComplete}
	case "REQUESTED":
		return Mapping{models.StatusRequested, models.PaymentStatePending, models.OrderStateOpen}
	case "DECLINED", "FAILED":
		return Mapping{models.StatusFailed, models.PaymentStateFailed, models.OrderStateCancelled}
	default:
		return Mapping{models.StatusPending, models.PaymentStatePending, models.OrderStateOpen}
	}
}

// MapFraudChargeStatus resolves the status of a charge created after a
// standalone fraud check. status must already be canonical.
func MapFraudChargeStatus(authorized bool, status string) (models.CommercePaymentState, models.PaydockStatus) {
	if authorized && (status == "Pending" || status == "Pre_authentication_pending") {
		return models.PaymentStatePending, models.StatusAuthorize
	}
	if status == "Complete" {
		return models.PaymentStatePaid, models.StatusPaid
	}
	return models.PaymentStatePending, models.StatusPending
}

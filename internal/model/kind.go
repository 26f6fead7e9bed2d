package model

import "strings"

// EventKind is the canonical classification of an inbound payload.
type EventKind string

const (
	KindDonation            EventKind = "donation"
	KindSubscriptionStart   EventKind = "subscription_start"
	KindSubscriptionRenewal EventKind = "subscription_renewal"
	KindCancellation        EventKind = "cancellation"
	KindRefund              EventKind = "refund"
)

// String returns the string representation of the kind.
func (k EventKind) String() string {
	return string(k)
}

// IsSubscription reports whether the kind is a subscription start or renewal.
func (k EventKind) IsSubscription() bool {
	return k == KindSubscriptionStart || k == KindSubscriptionRenewal
}

// Classify maps a payload to exactly one EventKind. Classification is total:
// the type string is checked first (case-insensitive substring), then the
// subscription flags, and anything left is a one-time donation. Absent flags
// behave as false.
func Classify(p *Payload) EventKind {
	typ := strings.ToLower(p.Type)
	switch {
	case strings.Contains(typ, "cancel"):
		return KindCancellation
	case strings.Contains(typ, "refund"):
		return KindRefund
	case p.IsSubscription && p.IsFirstSubscription:
		return KindSubscriptionStart
	case p.IsSubscription:
		return KindSubscriptionRenewal
	default:
		return KindDonation
	}
}

package model

import (
	"encoding/json"
	"time"
)

// Subscription is the active-subscription record for a single supporter.
// At most one entry exists per supporter name; a new start or renewal
// overwrites the previous record.
type Subscription struct {
	Tier      string    `json:"tier"`
	TierName  string    `json:"tier_name,omitempty"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	MessageID string    `json:"message_id"`
}

// Label returns the display name for the subscription's tier.
func (s Subscription) Label() string {
	if s.TierName != "" {
		return s.TierName
	}
	return s.Tier
}

// Donor is a single one-time donation. The donor list is append-only.
type Donor struct {
	FromName  string    `json:"from_name"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Message   string    `json:"message,omitempty"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Cancellation records a subscription removal. Append-only.
type Cancellation struct {
	FromName  string    `json:"from_name"`
	Tier      string    `json:"tier"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Refund records a refunded payment. Append-only.
type Refund struct {
	FromName  string    `json:"from_name"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	MessageID string    `json:"message_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is the persisted supporter aggregate. It is loaded whole from the
// store at the start of a request, folded once, and written back whole.
// The tierCounts key is camelCase for compatibility with documents written
// by earlier versions.
type Ledger struct {
	Subscriptions map[string]Subscription `json:"subscriptions"`
	Donors        []Donor                 `json:"donors"`
	Cancellations []Cancellation          `json:"cancellations"`
	Refunds       []Refund                `json:"refunds"`
	TierCounts    map[string]int          `json:"tierCounts"`
}

// NewLedger returns an empty ledger with all collections allocated.
func NewLedger() *Ledger {
	return &Ledger{
		Subscriptions: make(map[string]Subscription),
		Donors:        []Donor{},
		Cancellations: []Cancellation{},
		Refunds:       []Refund{},
		TierCounts:    make(map[string]int),
	}
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Subscriptions: make(map[string]Subscription, len(l.Subscriptions)),
		Donors:        make([]Donor, len(l.Donors)),
		Cancellations: make([]Cancellation, len(l.Cancellations)),
		Refunds:       make([]Refund, len(l.Refunds)),
		TierCounts:    make(map[string]int, len(l.TierCounts)),
	}
	for name, sub := range l.Subscriptions {
		c.Subscriptions[name] = sub
	}
	copy(c.Donors, l.Donors)
	copy(c.Cancellations, l.Cancellations)
	copy(c.Refunds, l.Refunds)
	for tier, n := range l.TierCounts {
		c.TierCounts[tier] = n
	}
	return c
}

// ActiveSubscribers returns the number of active subscriptions counted
// across all tiers with a positive count.
func (l *Ledger) ActiveSubscribers() int {
	total := 0
	for _, n := range l.TierCounts {
		if n > 0 {
			total += n
		}
	}
	return total
}

// DecodeLedger parses a stored ledger document. Unparseable content and the
// legacy flat-array format written by the ancestor relay both decode to an
// empty ledger rather than an error; the store treats them as "no data yet".
func DecodeLedger(data []byte) *Ledger {
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return NewLedger()
	}
	if l.Subscriptions == nil {
		l.Subscriptions = make(map[string]Subscription)
	}
	if l.Donors == nil {
		l.Donors = []Donor{}
	}
	if l.Cancellations == nil {
		l.Cancellations = []Cancellation{}
	}
	if l.Refunds == nil {
		l.Refunds = []Refund{}
	}
	if l.TierCounts == nil {
		l.TierCounts = make(map[string]int)
	}
	return &l
}

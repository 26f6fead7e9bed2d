package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Censor is the marker written over secret-bearing payload fields after
// verification. Payloads must never leave the process un-redacted.
const Censor = "*****"

// Payload is a single inbound Ko-fi webhook event. One instance lives per
// request; it is redacted in place immediately after token verification.
type Payload struct {
	MessageID           string `json:"message_id"`
	FromName            string `json:"from_name"`
	Message             string `json:"message"`
	Amount              string `json:"amount"`
	Currency            string `json:"currency"`
	Type                string `json:"type"`
	TierName            string `json:"tier_name,omitempty"`
	VerificationToken   string `json:"verification_token"`
	Email               string `json:"email,omitempty"`
	KofiTransactionID   string `json:"kofi_transaction_id,omitempty"`
	Shipping            any    `json:"shipping,omitempty"`
	IsSubscription      bool   `json:"is_subscription_payment,omitempty"`
	IsFirstSubscription bool   `json:"is_first_subscription_payment,omitempty"`
	Timestamp           string `json:"timestamp,omitempty"`
}

// ParsePayload decodes a payload from raw JSON. The webhook field may carry
// either a JSON object or a JSON string containing an object; both forms are
// accepted.
func ParsePayload(data []byte) (*Payload, error) {
	raw := data
	// Unwrap a JSON-string-encoded payload.
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("unwrap payload string: %w", err)
		}
		raw = []byte(s)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}

// Verify compares the payload's verification token against the configured
// secret. A mismatch aborts all further processing of the request.
func (p *Payload) Verify(secret string) bool {
	return p.VerificationToken == secret
}

// Redact overwrites the secret-bearing fields in place. It must run before
// the payload is logged, published, rendered, or persisted.
func (p *Payload) Redact() {
	p.VerificationToken = Censor
	p.Email = Censor
	p.KofiTransactionID = Censor
	p.Shipping = nil
}

// Tier resolves the tier label for ledger bookkeeping: the named tier if
// present, otherwise the raw type string, otherwise "Default".
func (p *Payload) Tier() string {
	if p.TierName != "" {
		return p.TierName
	}
	if p.Type != "" {
		return p.Type
	}
	return "Default"
}

// EffectiveTime returns the payload's own timestamp when it parses as
// RFC 3339, otherwise the supplied fallback.
func (p *Payload) EffectiveTime(fallback time.Time) time.Time {
	if p.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, p.Timestamp); err == nil {
			return ts
		}
	}
	return fallback
}

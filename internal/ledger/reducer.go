// Package ledger folds classified supporter events into the persisted
// aggregate. Reduce is a pure function; callers own loading and saving.
package ledger

import (
	"time"

	"github.com/groblegark/kofid/internal/model"
)

// RenewalWindow is the fixed subscription lifetime granted by a start or
// renewal payment.
const RenewalWindow = 30 * 24 * time.Hour

// Reduce applies one classified event to the ledger and returns the result.
// The input ledger is never mutated. The payload's own timestamp is used
// when present; now is the fallback clock reading.
func Reduce(l *model.Ledger, p *model.Payload, kind model.EventKind, now time.Time) *model.Ledger {
	out := l.Clone()
	tier := p.Tier()
	ts := p.EffectiveTime(now)

	switch kind {
	case model.KindDonation:
		out.Donors = append(out.Donors, model.Donor{
			FromName:  p.FromName,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Message:   p.Message,
			MessageID: p.MessageID,
			Timestamp: ts,
		})

	case model.KindSubscriptionStart:
		out.Subscriptions[p.FromName] = newSubscription(p, tier, ts)
		out.TierCounts[tier]++

	case model.KindSubscriptionRenewal:
		// The supporter is already counted; only the record is refreshed.
		out.Subscriptions[p.FromName] = newSubscription(p, tier, ts)

	case model.KindCancellation:
		// Tier comes from the incoming payload, not the stored record.
		// Ko-fi's cancellation payloads carry the same tier as the original
		// subscription; if they ever diverge the wrong count is decremented.
		delete(out.Subscriptions, p.FromName)
		if out.TierCounts[tier] > 0 {
			out.TierCounts[tier]--
		}
		out.Cancellations = append(out.Cancellations, model.Cancellation{
			FromName:  p.FromName,
			Tier:      tier,
			MessageID: p.MessageID,
			Timestamp: ts,
		})

	case model.KindRefund:
		out.Refunds = append(out.Refunds, model.Refund{
			FromName:  p.FromName,
			Amount:    p.Amount,
			Currency:  p.Currency,
			MessageID: p.MessageID,
			Timestamp: ts,
		})
	}

	return out
}

func newSubscription(p *model.Payload, tier string, ts time.Time) model.Subscription {
	return model.Subscription{
		Tier:      tier,
		TierName:  p.TierName,
		Amount:    p.Amount,
		Currency:  p.Currency,
		StartsAt:  ts,
		EndsAt:    ts.Add(RenewalWindow),
		MessageID: p.MessageID,
	}
}

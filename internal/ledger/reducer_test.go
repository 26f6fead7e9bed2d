package ledger

import (
	"testing"
	"time"

	"github.com/groblegark/kofid/internal/model"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReduce_Donation(t *testing.T) {
	l := model.NewLedger()
	l.TierCounts["Gold"] = 1

	p := &model.Payload{MessageID: "m1", FromName: "Alice", Amount: "5.00", Currency: "USD", Message: "thanks!"}
	out := Reduce(l, p, model.KindDonation, now)

	if len(out.Donors) != 1 {
		t.Fatalf("donors = %d, want 1", len(out.Donors))
	}
	d := out.Donors[0]
	if d.FromName != "Alice" || d.Amount != "5.00" || d.Currency != "USD" || d.MessageID != "m1" {
		t.Errorf("donor record = %+v", d)
	}
	if !d.Timestamp.Equal(now) {
		t.Errorf("donor timestamp = %v, want %v", d.Timestamp, now)
	}
	if len(out.Subscriptions) != 0 {
		t.Errorf("donation touched subscriptions: %+v", out.Subscriptions)
	}
	if out.TierCounts["Gold"] != 1 {
		t.Errorf("donation touched tierCounts: %+v", out.TierCounts)
	}
	if len(l.Donors) != 0 {
		t.Error("input ledger was mutated")
	}
}

func TestReduce_SubscriptionStart(t *testing.T) {
	l := model.NewLedger()
	p := &model.Payload{MessageID: "m2", FromName: "Alice", Amount: "10.00", Currency: "USD", TierName: "Gold", Type: "Subscription"}

	out := Reduce(l, p, model.KindSubscriptionStart, now)

	sub, ok := out.Subscriptions["Alice"]
	if !ok {
		t.Fatal("subscription not recorded")
	}
	if sub.Tier != "Gold" || sub.TierName != "Gold" {
		t.Errorf("tier = %q/%q, want Gold", sub.Tier, sub.TierName)
	}
	if !sub.StartsAt.Equal(now) {
		t.Errorf("StartsAt = %v, want %v", sub.StartsAt, now)
	}
	if want := now.Add(RenewalWindow); !sub.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", sub.EndsAt, want)
	}
	if out.TierCounts["Gold"] != 1 {
		t.Errorf("TierCounts[Gold] = %d, want 1", out.TierCounts["Gold"])
	}
}

func TestReduce_RenewalDoesNotDoubleCount(t *testing.T) {
	l := model.NewLedger()
	start := &model.Payload{MessageID: "m1", FromName: "Alice", TierName: "Gold", Amount: "10.00", Currency: "USD"}
	l = Reduce(l, start, model.KindSubscriptionStart, now)

	later := now.Add(29 * 24 * time.Hour)
	renew := &model.Payload{MessageID: "m2", FromName: "Alice", TierName: "Gold", Amount: "10.00", Currency: "USD"}
	out := Reduce(l, renew, model.KindSubscriptionRenewal, later)

	if out.TierCounts["Gold"] != 1 {
		t.Errorf("TierCounts[Gold] = %d after renewal, want 1", out.TierCounts["Gold"])
	}
	sub := out.Subscriptions["Alice"]
	if sub.MessageID != "m2" {
		t.Errorf("renewal did not overwrite the record: %+v", sub)
	}
	if want := later.Add(RenewalWindow); !sub.EndsAt.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", sub.EndsAt, want)
	}
}

func TestReduce_StartThenCancellation(t *testing.T) {
	l := model.NewLedger()
	l.TierCounts["Gold"] = 2 // pre-existing supporters in the same tier

	start := &model.Payload{MessageID: "m1", FromName: "Alice", TierName: "Gold"}
	l = Reduce(l, start, model.KindSubscriptionStart, now)
	if l.TierCounts["Gold"] != 3 {
		t.Fatalf("TierCounts[Gold] = %d after start, want 3", l.TierCounts["Gold"])
	}

	cancel := &model.Payload{MessageID: "m2", FromName: "Alice", TierName: "Gold", Type: "Subscription Cancelled"}
	out := Reduce(l, cancel, model.KindCancellation, now)

	if out.TierCounts["Gold"] != 2 {
		t.Errorf("TierCounts[Gold] = %d after cancel, want restored 2", out.TierCounts["Gold"])
	}
	if _, ok := out.Subscriptions["Alice"]; ok {
		t.Error("subscription still present after cancellation")
	}
	if len(out.Cancellations) != 1 {
		t.Fatalf("cancellations = %d, want 1", len(out.Cancellations))
	}
	if c := out.Cancellations[0]; c.FromName != "Alice" || c.Tier != "Gold" || c.MessageID != "m2" {
		t.Errorf("cancellation record = %+v", c)
	}
}

func TestReduce_CancellationTierFromIncomingPayload(t *testing.T) {
	// The decrement uses the tier named by the cancellation payload, not
	// the stored record. A mismatched payload decrements the wrong tier.
	l := model.NewLedger()
	start := &model.Payload{MessageID: "m1", FromName: "Alice", TierName: "Gold"}
	l = Reduce(l, start, model.KindSubscriptionStart, now)

	cancel := &model.Payload{MessageID: "m2", FromName: "Alice", TierName: "Silver"}
	out := Reduce(l, cancel, model.KindCancellation, now)

	if out.TierCounts["Gold"] != 1 {
		t.Errorf("TierCounts[Gold] = %d, want untouched 1", out.TierCounts["Gold"])
	}
	if out.TierCounts["Silver"] != 0 {
		t.Errorf("TierCounts[Silver] = %d, want floored 0", out.TierCounts["Silver"])
	}
}

func TestReduce_CancellationNeverGoesNegative(t *testing.T) {
	l := model.NewLedger()
	cancel := &model.Payload{MessageID: "m1", FromName: "Ghost", TierName: "Gold"}

	out := Reduce(l, cancel, model.KindCancellation, now)
	out = Reduce(out, cancel, model.KindCancellation, now)

	if out.TierCounts["Gold"] < 0 {
		t.Errorf("TierCounts[Gold] = %d, must never be negative", out.TierCounts["Gold"])
	}
	if len(out.Cancellations) != 2 {
		t.Errorf("cancellations = %d, want 2 (append-only)", len(out.Cancellations))
	}
}

func TestReduce_Refund(t *testing.T) {
	l := model.NewLedger()
	start := &model.Payload{MessageID: "m1", FromName: "Alice", TierName: "Gold"}
	l = Reduce(l, start, model.KindSubscriptionStart, now)

	refund := &model.Payload{MessageID: "m2", FromName: "Alice", Amount: "10.00", Currency: "USD", Type: "Refund"}
	out := Reduce(l, refund, model.KindRefund, now)

	if len(out.Refunds) != 1 {
		t.Fatalf("refunds = %d, want 1", len(out.Refunds))
	}
	if out.TierCounts["Gold"] != 1 {
		t.Errorf("refund touched tierCounts: %+v", out.TierCounts)
	}
	if _, ok := out.Subscriptions["Alice"]; !ok {
		t.Error("refund touched subscriptions")
	}
}

func TestReduce_UsesPayloadTimestamp(t *testing.T) {
	l := model.NewLedger()
	p := &model.Payload{MessageID: "m1", FromName: "Alice", Timestamp: "2025-01-15T08:30:00Z"}
	want := time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)

	out := Reduce(l, p, model.KindDonation, now)
	if !out.Donors[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want payload's %v", out.Donors[0].Timestamp, want)
	}
}

func TestReduce_TierFallsBackToType(t *testing.T) {
	l := model.NewLedger()
	p := &model.Payload{MessageID: "m1", FromName: "Alice", Type: "Subscription", IsSubscription: true, IsFirstSubscription: true}

	out := Reduce(l, p, model.KindSubscriptionStart, now)
	if out.TierCounts["Subscription"] != 1 {
		t.Errorf("TierCounts = %+v, want count under type string", out.TierCounts)
	}
}

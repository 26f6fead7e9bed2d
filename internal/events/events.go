package events

import (
	"context"

	"github.com/groblegark/kofid/internal/model"
)

// Event topic constants
const (
	TopicDonationReceived      = "kofi.donation.received"
	TopicSubscriptionStarted   = "kofi.subscription.started"
	TopicSubscriptionRenewed   = "kofi.subscription.renewed"
	TopicSubscriptionCancelled = "kofi.subscription.cancelled"
	TopicPaymentRefunded       = "kofi.payment.refunded"
)

// TopicFor maps an event kind to its NATS topic.
func TopicFor(kind model.EventKind) string {
	switch kind {
	case model.KindSubscriptionStart:
		return TopicSubscriptionStarted
	case model.KindSubscriptionRenewal:
		return TopicSubscriptionRenewed
	case model.KindCancellation:
		return TopicSubscriptionCancelled
	case model.KindRefund:
		return TopicPaymentRefunded
	default:
		return TopicDonationReceived
	}
}

// SupporterEvent is the published record for a classified payload. The
// payload is redacted before it reaches the publisher.
type SupporterEvent struct {
	Kind    model.EventKind `json:"kind"`
	Payload *model.Payload  `json:"payload"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

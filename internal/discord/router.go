package discord

import (
	"errors"

	"github.com/groblegark/kofid/internal/model"
)

// ErrNoDefaultSink indicates the mandatory default sink is unconfigured.
var ErrNoDefaultSink = errors.New("no default webhook sink configured")

// Router selects the sink URL for an event kind. Kind-specific sinks are
// optional; everything falls back to Default, which is required.
type Router struct {
	Default       string
	Subscriptions string
	Donations     string
	Alerts        string
}

// SinkFor returns the webhook URL an event of the given kind should be
// delivered to.
func (r *Router) SinkFor(kind model.EventKind) (string, error) {
	if r.Default == "" {
		return "", ErrNoDefaultSink
	}
	switch kind {
	case model.KindSubscriptionStart, model.KindSubscriptionRenewal:
		return r.orDefault(r.Subscriptions), nil
	case model.KindDonation:
		return r.orDefault(r.Donations), nil
	case model.KindCancellation, model.KindRefund:
		return r.orDefault(r.Alerts), nil
	default:
		return r.Default, nil
	}
}

func (r *Router) orDefault(sink string) string {
	if sink != "" {
		return sink
	}
	return r.Default
}

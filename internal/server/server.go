package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/kofid/internal/config"
	"github.com/groblegark/kofid/internal/discord"
	"github.com/groblegark/kofid/internal/events"
	"github.com/groblegark/kofid/internal/ledger"
	"github.com/groblegark/kofid/internal/model"
	"github.com/groblegark/kofid/internal/store"
)

// RelayServer handles Ko-fi webhook deliveries and summary requests. Each
// request is processed sequentially start to finish; the only shared state
// is the ledger document, which is read-modify-write with last-writer-wins
// semantics.
type RelayServer struct {
	cfg       *config.Config
	store     store.Store // nil when no ledger store is configured
	publisher events.Publisher
	client    *discord.Client
	renderer  *discord.Renderer
	router    *discord.Router

	// now is the clock; overridable in tests.
	now func() time.Time
}

// NewRelayServer returns a server backed by the given store and publisher.
// The store may be nil, in which case deliveries work but nothing is
// persisted and summaries are refused.
func NewRelayServer(cfg *config.Config, s store.Store, p events.Publisher) *RelayServer {
	return &RelayServer{
		cfg:       cfg,
		store:     s,
		publisher: p,
		client:    discord.NewClient(cfg.DeliveryTimeout),
		renderer:  &discord.Renderer{Username: cfg.KofiUsername},
		router: &discord.Router{
			Default:       cfg.WebhookURL,
			Subscriptions: cfg.WebhookSubscriptions,
			Donations:     cfg.WebhookDonations,
			Alerts:        cfg.WebhookAlerts,
		},
		now: time.Now,
	}
}

// publish emits the classified event to the publisher. Best-effort; a
// failure is logged and never blocks the request.
func (s *RelayServer) publish(ctx context.Context, p *model.Payload, kind model.EventKind) {
	topic := events.TopicFor(kind)
	if err := s.publisher.Publish(ctx, topic, events.SupporterEvent{Kind: kind, Payload: p}); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "message_id", p.MessageID, "error", err)
	}
}

// persist folds the event into the stored ledger. It runs regardless of
// whether the Discord delivery succeeded, so a sink outage never loses
// supporter state.
func (s *RelayServer) persist(ctx context.Context, p *model.Payload, kind model.EventKind) error {
	current, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}
	next := ledger.Reduce(current, p, kind, s.now())
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// SendSummary loads the ledger, renders the summary, and delivers it to the
// summary sink. Store-read failures and delivery failures are both fatal.
// Shared by the HTTP summary endpoint and the one-shot CLI command.
func (s *RelayServer) SendSummary(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("ledger store not configured")
	}
	sink := s.cfg.SummarySink()
	if !config.ValidSinkURL(sink) {
		return fmt.Errorf("invalid summary webhook URL")
	}

	l, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	rich, legacy := s.renderer.RenderSummary(l, s.now())
	if err := s.client.Send(ctx, sink, rich, legacy); err != nil {
		return fmt.Errorf("deliver summary: %w", err)
	}
	return nil
}

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/groblegark/kofid/internal/model"
)

func TestTopicFor(t *testing.T) {
	tests := []struct {
		kind model.EventKind
		want string
	}{
		{model.KindDonation, TopicDonationReceived},
		{model.KindSubscriptionStart, TopicSubscriptionStarted},
		{model.KindSubscriptionRenewal, TopicSubscriptionRenewed},
		{model.KindCancellation, TopicSubscriptionCancelled},
		{model.KindRefund, TopicPaymentRefunded},
	}
	for _, tt := range tests {
		if got := TopicFor(tt.kind); got != tt.want {
			t.Errorf("TopicFor(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	opts := &natsserver.Options{Host: "127.0.0.1", Port: -1}
	srv, err := natsserver.NewServer(opts)
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("connecting subscriber: %v", err)
	}
	defer nc.Close()

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("kofi.>", ch)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer sub.Unsubscribe()
	nc.Flush()

	event := SupporterEvent{
		Kind:    model.KindDonation,
		Payload: &model.Payload{MessageID: "msg-1", FromName: "Alice"},
	}
	if err := pub.Publish(context.Background(), TopicDonationReceived, event); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		if msg.Subject != TopicDonationReceived {
			t.Errorf("subject = %q, want %q", msg.Subject, TopicDonationReceived)
		}
		var got SupporterEvent
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("decoding event: %v", err)
		}
		if got.Kind != model.KindDonation || got.Payload.FromName != "Alice" {
			t.Errorf("event = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNoopPublisher(t *testing.T) {
	p := &NoopPublisher{}
	if err := p.Publish(context.Background(), TopicDonationReceived, nil); err != nil {
		t.Errorf("Publish = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/groblegark/dockhand/internal/model"
)

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

func TestNATSPublishSubscribe(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicBatchComplete)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	event := BatchComplete{BatchNumber: "1234567", Operator: "op1"}
	if err := pub.Publish(context.Background(), TopicBatchComplete, event); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got BatchComplete
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if got.BatchNumber != "1234567" || got.Operator != "op1" {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestNATSWildcardReceivesHandoffs(t *testing.T) {
	url := startTestNATS(t)

	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("receiving.handoff.>")
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	event := HandoffCatchWeight{
		Operator: "op1",
		Pallet:   &model.Pallet{ID: "plt-1", BatchNumber: "1234567"},
		Boxes:    40,
	}
	if err := pub.Publish(context.Background(), TopicHandoffCatchWeight, event); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	pub.conn.Flush()

	select {
	case msg := <-ch:
		var got HandoffCatchWeight
		if err := json.Unmarshal(msg, &got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if got.Pallet == nil || got.Pallet.ID != "plt-1" || got.Boxes != 40 {
			t.Errorf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	url := startTestNATS(t)

	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(TopicPalletCommitted)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel should be closed after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	if err := p.Publish(context.Background(), TopicBatchClosed, BatchClosed{}); err != nil {
		t.Errorf("noop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("noop close: %v", err)
	}
}

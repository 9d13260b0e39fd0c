package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/model"
)

// memDest collects flushed payloads in memory.
type memDest struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
}

func (d *memDest) Write(_ context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return errors.New("destination unavailable")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	d.payloads = append(d.payloads, cp)
	return nil
}

func (d *memDest) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.payloads)
}

func (d *memDest) last() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.payloads) == 0 {
		return nil
	}
	return d.payloads[len(d.payloads)-1]
}

// chanSub is a fake Subscriber feeding canned payloads per topic.
type chanSub struct {
	mu     sync.Mutex
	chans  map[string]chan []byte
	closed bool
}

func newChanSub() *chanSub {
	return &chanSub{chans: make(map[string]chan []byte)}
}

func (s *chanSub) Subscribe(topic string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan []byte, 16)
	s.chans[topic] = ch
	return ch, func() {}, nil
}

func (s *chanSub) Close() error { return nil }

func (s *chanSub) emit(t *testing.T, topic string, event any) {
	t.Helper()
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	s.mu.Lock()
	ch, ok := s.chans[topic]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for topic %s", topic)
	}
	ch <- payload
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nullWriter{}, nil))
}

type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestExporterCapturesAndFlushes(t *testing.T) {
	dest := &memDest{}
	sub := newChanSub()
	e := New([]Destination{dest}, 20*time.Millisecond, testLogger())
	if err := e.Start(sub); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	sub.emit(t, events.TopicPalletCommitted, events.PalletCommitted{
		Pallet: &model.Pallet{ID: "PLT001", BatchNumber: "1234567", Qty: 20},
	})
	sub.emit(t, events.TopicBatchClosed, events.BatchClosed{BatchNumber: "1234567", LotsUpdated: 1})

	waitFor(t, func() bool { return dest.count() > 0 })

	sc := bufio.NewScanner(bytes.NewReader(dest.last()))
	var types []string
	for sc.Scan() {
		var line struct {
			Type  string `json:"type"`
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("bad jsonl line: %v", err)
		}
		types = append(types, line.Type)
	}
	if len(types) < 2 || types[0] != "header" {
		t.Fatalf("expected header plus events, got %v", types)
	}
}

func TestExporterRetriesFailedFlush(t *testing.T) {
	dest := &memDest{fail: true}
	sub := newChanSub()
	e := New([]Destination{dest}, 20*time.Millisecond, testLogger())
	if err := e.Start(sub); err != nil {
		t.Fatal(err)
	}
	defer e.Stop()

	sub.emit(t, events.TopicHoldCreated, events.HoldCreated{
		Hold: &model.Hold{ID: "hld-1", BatchNumber: "1234567", Kind: model.HoldBlast},
	})

	// Let a few failing flushes happen, then heal the destination.
	time.Sleep(100 * time.Millisecond)
	if dest.count() != 0 {
		t.Fatal("no payload should land while failing")
	}
	dest.mu.Lock()
	dest.fail = false
	dest.mu.Unlock()

	waitFor(t, func() bool { return dest.count() > 0 })

	// The buffered record survived the failed flushes.
	payload := dest.last()
	if !bytes.Contains(payload, []byte("hld-1")) {
		t.Errorf("expected buffered hold in payload: %s", payload)
	}
}

func TestExporterEmptyBufferSkipsFlush(t *testing.T) {
	dest := &memDest{}
	sub := newChanSub()
	e := New([]Destination{dest}, 10*time.Millisecond, testLogger())
	if err := e.Start(sub); err != nil {
		t.Fatal(err)
	}

	time.Sleep(60 * time.Millisecond)
	e.Stop()
	if dest.count() != 0 {
		t.Errorf("expected no flushes with empty buffer, got %d", dest.count())
	}
}

func TestStopFlushesRemainder(t *testing.T) {
	dest := &memDest{}
	sub := newChanSub()
	// Long interval so the tick never fires during the test.
	e := New([]Destination{dest}, time.Hour, testLogger())
	if err := e.Start(sub); err != nil {
		t.Fatal(err)
	}

	sub.emit(t, events.TopicHoldReleased, events.HoldReleased{BatchNumber: "1234567", Count: 2})
	waitFor(t, func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		return len(e.lines) == 1
	})

	e.Stop()
	if dest.count() != 1 {
		t.Fatalf("expected final flush on stop, got %d", dest.count())
	}
}

// Package export streams receiving activity to external destinations as
// JSONL. The exporter subscribes to the commit, hold, and close topics,
// buffers each event as one line, and flushes the buffer to every
// destination on an interval. Downstream inventory and billing systems
// consume the objects; the warehouse database stays the source of truth.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/dockhand/internal/events"
)

// Destination is a flush target (S3 or compatible object store).
type Destination interface {
	// Write sends one JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// topics whose events are captured in the activity log.
var captureTopics = []string{
	events.TopicPalletCommitted,
	events.TopicBatchClosed,
	events.TopicHoldCreated,
	events.TopicHoldReleased,
}

// header is the first JSONL record of every flushed payload.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
}

// record wraps one captured event with its topic and capture time.
type record struct {
	Type   string          `json:"type"`
	Topic  string          `json:"topic"`
	SeenAt time.Time       `json:"seen_at"`
	Data   json.RawMessage `json:"data"`
}

// Exporter buffers receiving events and flushes them on an interval.
type Exporter struct {
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	mu    sync.Mutex
	lines [][]byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an exporter flushing to the given destinations at the
// specified interval.
func New(destinations []Destination, interval time.Duration, logger *slog.Logger) *Exporter {
	return &Exporter{
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start subscribes to the capture topics and begins the flush loop.
func (e *Exporter) Start(sub events.Subscriber) error {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	for _, topic := range captureTopics {
		ch, cancelSub, err := sub.Subscribe(topic)
		if err != nil {
			cancel()
			return fmt.Errorf("export: subscribe %s: %w", topic, err)
		}
		e.wg.Add(1)
		go func(topic string, ch <-chan []byte, cancelSub func()) {
			defer e.wg.Done()
			defer cancelSub()
			e.collect(ctx, topic, ch)
		}(topic, ch, cancelSub)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.flushLoop(ctx)
	}()

	e.logger.Info("export: started",
		"topics", len(captureTopics), "destinations", len(e.destinations), "interval", e.interval)
	return nil
}

// Stop flushes any buffered records and shuts the exporter down.
func (e *Exporter) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	e.Flush(ctx)
}

func (e *Exporter) collect(ctx context.Context, topic string, ch <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			line, err := json.Marshal(record{
				Type:   "event",
				Topic:  topic,
				SeenAt: time.Now().UTC(),
				Data:   json.RawMessage(raw),
			})
			if err != nil {
				e.logger.Warn("export: bad event payload", "topic", topic, "err", err)
				continue
			}
			e.mu.Lock()
			e.lines = append(e.lines, line)
			e.mu.Unlock()
		}
	}
}

func (e *Exporter) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Flush(ctx)
		}
	}
}

// Flush writes the buffered records to every destination. The buffer is
// cleared only when all destinations accept the payload, so a failed flush
// retries the same records next tick.
func (e *Exporter) Flush(ctx context.Context) {
	e.mu.Lock()
	lines := e.lines
	e.mu.Unlock()
	if len(lines) == 0 {
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		RecordCount: len(lines),
	}); err != nil {
		e.logger.Error("export: encode header", "err", err)
		return
	}
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}

	ok := true
	for i, dest := range e.destinations {
		if err := dest.Write(ctx, buf.Bytes()); err != nil {
			e.logger.Error("export: destination write failed", "destination", i, "err", err)
			ok = false
		}
	}
	if !ok {
		return
	}

	e.mu.Lock()
	e.lines = e.lines[len(lines):]
	e.mu.Unlock()
	e.logger.Info("export: flushed", "records", len(lines), "bytes", buf.Len())
}

package batchclose

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/facility"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

// closeRepo is an in-memory store.Store tracking the calls the closer makes.
type closeRepo struct {
	mu sync.Mutex

	batch        *model.Batch
	totals       []*model.Lot
	pallets      []*model.Pallet
	confirmation *model.ShipmentConfirmation

	lotUpdates     []*model.Lot
	emptyDeleted   bool
	holdsReleased  int
	finishAt       time.Time
	autoReceived   []string
	palletsDeleted []string
}

func (r *closeRepo) GetBatch(_ context.Context, number string) (*model.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.batch == nil || r.batch.Number != number {
		return nil, store.ErrNotFound
	}
	cp := *r.batch
	return &cp, nil
}

func (r *closeRepo) UpdateBatchStatus(_ context.Context, number string, status model.BatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batch.Status = status
	return nil
}

func (r *closeRepo) UpdateLoadFinish(_ context.Context, number string, finished time.Time, scanStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishAt = finished
	return nil
}

func (r *closeRepo) GetProduct(context.Context, string, string) (*model.Product, error) {
	return nil, store.ErrNotFound
}

func (r *closeRepo) GetScanProfile(context.Context, string) (*model.ScanProfile, error) {
	return nil, store.ErrNotFound
}

func (r *closeRepo) GetASN(context.Context, string, string) (*model.ASN, error) {
	return nil, store.ErrNotFound
}

func (r *closeRepo) CreatePallet(context.Context, *model.Pallet) error { return nil }

func (r *closeRepo) DeletePallet(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.palletsDeleted = append(r.palletsDeleted, id)
	kept := r.pallets[:0]
	for _, p := range r.pallets {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	r.pallets = kept
	return nil
}

func (r *closeRepo) SetPalletPlatform(context.Context, string, string) error {
	return nil
}
func (r *closeRepo) SetPalletPutAway(context.Context, string, string) error { return nil }

func (r *closeRepo) ListPallets(_ context.Context, number string) ([]*model.Pallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Pallet
	for _, p := range r.pallets {
		if p.BatchNumber == number {
			out = append(out, p)
		}
	}
	return out, nil
}
func (r *closeRepo) UpsertLot(context.Context, *model.Lot) error { return nil }

func (r *closeRepo) UpdateLotTotals(_ context.Context, lot *model.Lot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lotUpdates = append(r.lotUpdates, lot)
	return nil
}

func (r *closeRepo) DeleteEmptyLots(_ context.Context, _ string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emptyDeleted = true
	return 1, nil
}

func (r *closeRepo) AggregateLotTotals(_ context.Context, _ string) ([]*model.Lot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals, nil
}

func (r *closeRepo) LatestReceivedDate(context.Context, string, string, string, string) (time.Time, error) {
	return time.Time{}, nil
}

func (r *closeRepo) RecordReceivedDate(context.Context, *model.Product, time.Time) error {
	return nil
}

func (r *closeRepo) RecordProblem(context.Context, *model.Problem) error { return nil }
func (r *closeRepo) CreateHold(context.Context, *model.Hold) error       { return nil }

func (r *closeRepo) ResolveHolds(_ context.Context, _ string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.holdsReleased, nil
}

func (r *closeRepo) GetOutboundLoad(context.Context, string) (*model.Batch, error) {
	return nil, store.ErrNotFound
}

func (r *closeRepo) BookCrossDock(context.Context, *model.Pallet, string, string, float64) error {
	return nil
}

func (r *closeRepo) OpenShipmentConfirmation(_ context.Context, _ string) (*model.ShipmentConfirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.confirmation == nil {
		return nil, store.ErrNotFound
	}
	return r.confirmation, nil
}

func (r *closeRepo) AutoReceive(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoReceived = append(r.autoReceived, id)
	return nil
}

func (r *closeRepo) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(r)
}

func (r *closeRepo) Close() error { return nil }

type capturePub struct {
	mu     sync.Mutex
	topics []string
}

func (c *capturePub) Publish(_ context.Context, topic string, _ any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
	return nil
}

func (c *capturePub) Close() error { return nil }

func (c *capturePub) saw(topic string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.topics {
		if t == topic {
			return true
		}
	}
	return false
}

func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(discard{}, nil))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestCloseReconciles(t *testing.T) {
	repo := &closeRepo{
		batch: &model.Batch{Number: "1234567", Status: model.BatchComplete},
		totals: []*model.Lot{
			{Number: "LOT1", BatchNumber: "1234567", ProductCode: "P100", Qty: 40, Weight: 400},
			{Number: "LOT2", BatchNumber: "1234567", ProductCode: "P200", Qty: 20, Weight: 180},
		},
		holdsReleased: 2,
	}
	pub := &capturePub{}
	c := New(repo, pub, nil, testLogger(t))

	if err := c.Close(context.Background(), "1234567"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if repo.batch.Status != model.BatchClosed {
		t.Errorf("expected closed, got %s", repo.batch.Status)
	}
	if len(repo.lotUpdates) != 2 {
		t.Errorf("expected 2 lot updates, got %d", len(repo.lotUpdates))
	}
	if !repo.emptyDeleted {
		t.Error("expected empty lots deleted")
	}
	if repo.finishAt.IsZero() {
		t.Error("expected load finish timestamp")
	}
	if !pub.saw(events.TopicBatchClosed) {
		t.Error("expected batch closed event")
	}
	if !pub.saw(events.TopicHoldReleased) {
		t.Error("expected hold released event")
	}
	if pub.saw(events.TopicMoveToYard) {
		t.Error("move-to-yard is off by default")
	}
}

func TestCloseDeletesEmptyPallets(t *testing.T) {
	repo := &closeRepo{
		batch: &model.Batch{Number: "1234567", Status: model.BatchComplete},
		pallets: []*model.Pallet{
			{ID: "PLT001", BatchNumber: "1234567", ProductCode: "P100", Qty: 20},
			{ID: "PLT002", BatchNumber: "1234567", ProductCode: "P100", Qty: 0},
			{ID: "PLT003", BatchNumber: "1234567", ProductCode: "P200", Qty: 0},
		},
	}
	c := New(repo, &capturePub{}, nil, testLogger(t))

	if err := c.Close(context.Background(), "1234567"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(repo.palletsDeleted) != 2 {
		t.Fatalf("expected 2 pallets deleted, got %v", repo.palletsDeleted)
	}
	for _, id := range repo.palletsDeleted {
		if id != "PLT002" && id != "PLT003" {
			t.Errorf("unexpected pallet deleted: %s", id)
		}
	}
	if len(repo.pallets) != 1 || repo.pallets[0].ID != "PLT001" {
		t.Errorf("expected only PLT001 to remain, got %v", repo.pallets)
	}
}

func TestCloseSkipsWrongStatus(t *testing.T) {
	for _, status := range []model.BatchStatus{model.BatchOpen, model.BatchReceiving, model.BatchClosed} {
		repo := &closeRepo{batch: &model.Batch{Number: "1234567", Status: status}}
		pub := &capturePub{}
		c := New(repo, pub, nil, testLogger(t))

		if err := c.Close(context.Background(), "1234567"); err != nil {
			t.Fatalf("close with status %s: %v", status, err)
		}
		if repo.batch.Status != status {
			t.Errorf("status %s should be untouched, got %s", status, repo.batch.Status)
		}
		if pub.saw(events.TopicBatchClosed) {
			t.Errorf("no close event expected for status %s", status)
		}
	}
}

func TestCloseUnknownBatchIsNoop(t *testing.T) {
	c := New(&closeRepo{}, &capturePub{}, nil, testLogger(t))
	if err := c.Close(context.Background(), "9999999"); err != nil {
		t.Fatalf("close unknown batch: %v", err)
	}
}

func TestCloseAutoReceives(t *testing.T) {
	repo := &closeRepo{
		batch:        &model.Batch{Number: "1234567", Status: model.BatchComplete},
		confirmation: &model.ShipmentConfirmation{ID: "sc-1", BatchNumber: "1234567", Open: true},
	}
	c := New(repo, &capturePub{}, nil, testLogger(t))

	if err := c.Close(context.Background(), "1234567"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(repo.autoReceived) != 1 || repo.autoReceived[0] != "sc-1" {
		t.Errorf("expected auto-receive of sc-1, got %v", repo.autoReceived)
	}
}

func TestCloseMoveToYard(t *testing.T) {
	repo := &closeRepo{batch: &model.Batch{Number: "1234567", Status: model.BatchComplete, Door: "D7"}}
	pub := &capturePub{}
	profile := facility.Default()
	profile.MoveToYard = true
	c := New(repo, pub, profile, testLogger(t))

	if err := c.Close(context.Background(), "1234567"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !pub.saw(events.TopicMoveToYard) {
		t.Error("expected move-to-yard event")
	}
}

func TestSubscriberClosesAfterSettle(t *testing.T) {
	url := startTestNATS(t)

	pub, err := events.NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	defer pub.Close()

	sub, err := events.NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	defer sub.Close()

	repo := &closeRepo{batch: &model.Batch{Number: "1234567", Status: model.BatchComplete}}
	profile := facility.Default()
	profile.CloseSettleDelay = 10 * time.Millisecond
	c := New(repo, &capturePub{}, profile, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.StartSubscriber(ctx, sub); err != nil {
			t.Errorf("subscriber: %v", err)
		}
	}()

	// Give the subscription a moment to establish before publishing.
	time.Sleep(100 * time.Millisecond)
	if err := pub.Publish(ctx, events.TopicBatchComplete, events.BatchComplete{
		BatchNumber: "1234567", Operator: "op1",
	}); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		repo.mu.Lock()
		status := repo.batch.Status
		repo.mu.Unlock()
		if status == model.BatchClosed {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	repo.mu.Lock()
	status := repo.batch.Status
	repo.mu.Unlock()
	if status != model.BatchClosed {
		t.Fatalf("batch not closed by subscriber, status %s", status)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop on cancel")
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

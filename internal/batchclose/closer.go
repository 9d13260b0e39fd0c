// Package batchclose reconciles a batch after the operator signals done.
// The operator's signal only flips the batch to complete and publishes an
// event; this orchestrator consumes the event, waits a settle delay so the
// last pallet's writes land, and then closes the batch: lot totals are
// recomputed from the received pallets, empty lots and zero-quantity
// pallets are dropped, holds are released, and any open shipment
// confirmation is auto-received. Every step is idempotent, so redelivery
// of the same event is harmless.
package batchclose

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/dockhand/internal/events"
	"github.com/groblegark/dockhand/internal/facility"
	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

// Closer consumes batch-complete events and reconciles the batch.
type Closer struct {
	repo    store.Store
	pub     events.Publisher
	profile *facility.Profile
	logger  *slog.Logger

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a closer.
func New(repo store.Store, pub events.Publisher, profile *facility.Profile, logger *slog.Logger) *Closer {
	if profile == nil {
		profile = facility.Default()
	}
	return &Closer{
		repo:    repo,
		pub:     pub,
		profile: profile,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StartSubscriber listens for batch-complete events and closes each batch
// after the settle delay. It blocks until ctx is cancelled.
func (c *Closer) StartSubscriber(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicBatchComplete)
	if err != nil {
		return fmt.Errorf("batchclose: subscribe: %w", err)
	}
	defer cancel()

	c.logger.Info("batchclose: subscriber started", "settle", c.profile.CloseSettleDelay)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("batchclose: subscriber stopping")
			return nil
		case raw, ok := <-ch:
			if !ok {
				c.logger.Info("batchclose: subscription channel closed")
				return nil
			}

			var event events.BatchComplete
			if err := json.Unmarshal(raw, &event); err != nil {
				c.logger.Warn("batchclose: bad event payload", "err", err)
				continue
			}
			if event.BatchNumber == "" {
				continue
			}

			if err := c.sleep(ctx, c.profile.CloseSettleDelay); err != nil {
				return nil
			}
			if err := c.Close(ctx, event.BatchNumber); err != nil {
				// Close failures never crash the subscriber; the batch stays
				// in complete and can be re-triggered.
				c.logger.Error("batchclose: close failed", "batch", event.BatchNumber, "err", err)
			}
		}
	}
}

// Close reconciles and closes one batch. A batch that is not in the
// complete state is left alone: either it was already closed, or an
// operator resumed receiving during the settle delay.
func (c *Closer) Close(ctx context.Context, number string) error {
	batch, err := c.repo.GetBatch(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Warn("batchclose: unknown batch", "batch", number)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get batch: %w", err)
	}
	if batch.Status != model.BatchComplete {
		c.logger.Info("batchclose: skipping", "batch", number, "status", batch.Status)
		return nil
	}

	var lotsUpdated, holdsReleased, palletsDeleted int
	err = c.repo.RunInTransaction(ctx, func(tx store.Store) error {
		totals, err := tx.AggregateLotTotals(ctx, number)
		if err != nil {
			return fmt.Errorf("aggregate lot totals: %w", err)
		}
		for _, lot := range totals {
			if err := tx.UpdateLotTotals(ctx, lot); err != nil {
				return fmt.Errorf("update lot %s: %w", lot.Number, err)
			}
		}
		lotsUpdated = len(totals)

		if _, err := tx.DeleteEmptyLots(ctx, number); err != nil {
			return fmt.Errorf("delete empty lots: %w", err)
		}

		// A pallet corrected down to zero cases is a phantom left by the
		// adjustment flow; it must not survive into inventory.
		pallets, err := tx.ListPallets(ctx, number)
		if err != nil {
			return fmt.Errorf("list pallets: %w", err)
		}
		for _, p := range pallets {
			if p.Qty != 0 {
				continue
			}
			if err := tx.DeletePallet(ctx, p.ID); err != nil {
				return fmt.Errorf("delete empty pallet %s: %w", p.ID, err)
			}
			palletsDeleted++
		}

		holdsReleased, err = tx.ResolveHolds(ctx, number)
		if err != nil {
			return fmt.Errorf("resolve holds: %w", err)
		}

		if err := tx.UpdateLoadFinish(ctx, number, c.now().UTC(), "scanned"); err != nil {
			return fmt.Errorf("update load finish: %w", err)
		}
		if err := tx.UpdateBatchStatus(ctx, number, model.BatchClosed); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Auto-receive against an open shipment confirmation when one exists.
	conf, err := c.repo.OpenShipmentConfirmation(ctx, number)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		c.logger.Error("batchclose: open confirmation lookup failed", "batch", number, "err", err)
	default:
		if err := c.repo.AutoReceive(ctx, conf.ID); err != nil {
			c.logger.Error("batchclose: auto-receive failed", "batch", number, "confirmation", conf.ID, "err", err)
		} else {
			c.logger.Info("batchclose: auto-received", "batch", number, "confirmation", conf.ID)
		}
	}

	if holdsReleased > 0 {
		c.publish(ctx, events.TopicHoldReleased, events.HoldReleased{
			BatchNumber: number,
			Count:       holdsReleased,
		})
	}
	if c.profile.MoveToYard {
		c.publish(ctx, events.TopicMoveToYard, events.MoveToYard{
			BatchNumber: number,
			Door:        batch.Door,
		})
	}
	c.publish(ctx, events.TopicBatchClosed, events.BatchClosed{
		BatchNumber:   number,
		LotsUpdated:   lotsUpdated,
		HoldsReleased: holdsReleased,
	})

	c.logger.Info("batchclose: batch closed",
		"batch", number, "lots", lotsUpdated,
		"holds_released", holdsReleased, "empty_pallets", palletsDeleted)
	return nil
}

func (c *Closer) publish(ctx context.Context, topic string, event any) {
	if err := c.pub.Publish(ctx, topic, event); err != nil {
		c.logger.Error("batchclose: publish", "topic", topic, "err", err)
	}
}

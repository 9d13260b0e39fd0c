// Package presence tracks which operators are actively receiving, and on
// which batch. The server records every dispatched scan; supervisors read
// the roster to see who is working a door and whether a batch still has a
// live receiver before forcing it closed. A background reaper marks
// operators idle after a threshold and eventually evicts them so the
// in-memory map does not grow without bound across shifts.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

// Entry is one operator's live receiving state.
type Entry struct {
	Operator    string    `json:"operator"`
	Terminal    string    `json:"terminal,omitempty"`
	BatchNumber string    `json:"batch_number,omitempty"`
	LastOp      model.Op  `json:"last_op,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	IdleSecs    float64   `json:"idle_secs"`
	ScanCount   int64     `json:"scan_count"`
	OffShift    bool      `json:"off_shift,omitempty"`
}

// ScanEvent is what the server reports to the tracker after each dispatch.
type ScanEvent struct {
	Operator    string
	Terminal    string
	BatchNumber string
	Op          model.Op
}

// ReaperConfig configures the idle-operator reaper.
type ReaperConfig struct {
	// IdleThreshold is how long without a scan before an operator is
	// marked off shift. Default: 30 minutes.
	IdleThreshold time.Duration

	// EvictAfter is how long after going off shift before the operator is
	// dropped from the map. Default: 2 hours.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans. Default: 60 seconds.
	SweepInterval time.Duration

	// OnIdle is called for each operator newly marked off shift. Called
	// outside the lock.
	OnIdle func(operator, batchNumber string)
}

// Tracker maintains the in-memory operator roster.
type Tracker struct {
	mu        sync.RWMutex
	operators map[string]*operatorState

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type operatorState struct {
	terminal    string
	batchNumber string
	lastOp      model.Op
	firstSeen   time.Time
	lastSeen    time.Time
	scanCount   int64
	offShift    bool
	offShiftAt  time.Time
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{operators: make(map[string]*operatorState)}
}

// RecordScan updates an operator's state after a dispatched request.
func (t *Tracker) RecordScan(ev ScanEvent) {
	if ev.Operator == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.operators[ev.Operator]
	if !ok {
		state = &operatorState{firstSeen: now}
		t.operators[ev.Operator] = state
	}

	if state.offShift {
		slog.Info("presence: operator back on shift", "operator", ev.Operator)
		state.offShift = false
		state.offShiftAt = time.Time{}
	}

	state.lastSeen = now
	state.scanCount++
	state.lastOp = ev.Op
	if ev.Terminal != "" {
		state.terminal = ev.Terminal
	}
	// A batch scan clears the previous association until the new batch is
	// known; any other op carries the number from the request.
	state.batchNumber = ev.BatchNumber
}

// Roster returns a snapshot of tracked operators sorted by most recent
// activity. staleThreshold excludes operators idle longer than it; pass 0
// to include everyone.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.operators))
	for op, state := range t.operators {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}
		entries = append(entries, Entry{
			Operator:    op,
			Terminal:    state.terminal,
			BatchNumber: state.batchNumber,
			LastOp:      state.lastOp,
			FirstSeen:   state.firstSeen,
			LastSeen:    state.lastSeen,
			IdleSecs:    idle.Seconds(),
			ScanCount:   state.scanCount,
			OffShift:    state.offShift,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// Receivers returns the on-shift operators currently working the given
// batch, most recently active first.
func (t *Tracker) Receivers(batchNumber string) []Entry {
	all := t.Roster(0)
	var out []Entry
	for _, e := range all {
		if e.BatchNumber == batchNumber && !e.OffShift {
			out = append(out, e)
		}
	}
	return out
}

// StartReaper launches the background idle sweep. Call Stop to shut down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleThreshold == 0 {
		cfg.IdleThreshold = 30 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 2 * time.Hour
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 60 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"idle_threshold", cfg.IdleThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	type idleOp struct {
		operator string
		batch    string
	}
	var newlyIdle []idleOp

	t.mu.Lock()
	for op, state := range t.operators {
		if state.offShift {
			if !state.offShiftAt.IsZero() && now.Sub(state.offShiftAt) > cfg.EvictAfter {
				delete(t.operators, op)
			}
			continue
		}
		if now.Sub(state.lastSeen) > cfg.IdleThreshold {
			state.offShift = true
			state.offShiftAt = now
			newlyIdle = append(newlyIdle, idleOp{operator: op, batch: state.batchNumber})
		}
	}
	t.mu.Unlock()

	for _, idle := range newlyIdle {
		slog.Info("presence: operator marked off shift",
			"operator", idle.operator, "batch", idle.batch)
		if cfg.OnIdle != nil {
			cfg.OnIdle(idle.operator, idle.batch)
		}
	}
}

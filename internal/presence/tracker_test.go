package presence

import (
	"testing"
	"time"

	"github.com/groblegark/dockhand/internal/model"
)

func TestRecordScan_BasicTracking(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{
		Operator:    "op1",
		Terminal:    "t7",
		BatchNumber: "1234567",
		Op:          model.OpPallet,
	})

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}

	e := roster[0]
	if e.Operator != "op1" {
		t.Errorf("expected operator op1, got %s", e.Operator)
	}
	if e.Terminal != "t7" {
		t.Errorf("expected terminal t7, got %s", e.Terminal)
	}
	if e.BatchNumber != "1234567" {
		t.Errorf("expected batch 1234567, got %s", e.BatchNumber)
	}
	if e.LastOp != model.OpPallet {
		t.Errorf("expected last op pallet, got %s", e.LastOp)
	}
	if e.ScanCount != 1 {
		t.Errorf("expected scan_count 1, got %d", e.ScanCount)
	}
}

func TestRecordScan_UpdatesExistingOperator(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpBatch})
	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpPallet})
	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpProduct})

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}
	if roster[0].ScanCount != 3 {
		t.Errorf("expected 3 scans, got %d", roster[0].ScanCount)
	}
	if roster[0].LastOp != model.OpProduct {
		t.Errorf("expected last op product, got %s", roster[0].LastOp)
	}
}

func TestRecordScan_IgnoresEmptyOperator(t *testing.T) {
	tr := New()
	tr.RecordScan(ScanEvent{Operator: "", Op: model.OpBatch})
	if len(tr.Roster(0)) != 0 {
		t.Fatal("expected no entries for empty operator")
	}
}

func TestReceivers_FiltersByBatch(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpPallet})
	tr.RecordScan(ScanEvent{Operator: "op2", BatchNumber: "1234567", Op: model.OpQty})
	tr.RecordScan(ScanEvent{Operator: "op3", BatchNumber: "7654321", Op: model.OpPallet})

	got := tr.Receivers("1234567")
	if len(got) != 2 {
		t.Fatalf("expected 2 receivers, got %d", len(got))
	}
	for _, e := range got {
		if e.BatchNumber != "1234567" {
			t.Errorf("wrong batch on receiver %s: %s", e.Operator, e.BatchNumber)
		}
	}
}

func TestReceivers_ExcludesOffShift(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpPallet})
	tr.RecordScan(ScanEvent{Operator: "op2", BatchNumber: "1234567", Op: model.OpQty})

	tr.mu.Lock()
	tr.operators["op2"].lastSeen = time.Now().Add(-time.Hour)
	tr.mu.Unlock()
	tr.sweep(&ReaperConfig{IdleThreshold: 30 * time.Minute, EvictAfter: 2 * time.Hour})

	got := tr.Receivers("1234567")
	if len(got) != 1 || got[0].Operator != "op1" {
		t.Fatalf("expected only op1 on shift, got %+v", got)
	}
}

func TestRoster_StaleThreshold(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "old", Op: model.OpBatch})
	tr.RecordScan(ScanEvent{Operator: "fresh", Op: model.OpBatch})

	tr.mu.Lock()
	tr.operators["old"].lastSeen = time.Now().Add(-45 * time.Minute)
	tr.mu.Unlock()

	roster := tr.Roster(30 * time.Minute)
	if len(roster) != 1 || roster[0].Operator != "fresh" {
		t.Fatalf("expected only fresh operator, got %+v", roster)
	}
	if len(tr.Roster(0)) != 2 {
		t.Fatal("expected both without threshold")
	}
}

func TestRoster_SortedByMostRecent(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "first", Op: model.OpBatch})
	time.Sleep(5 * time.Millisecond)
	tr.RecordScan(ScanEvent{Operator: "second", Op: model.OpBatch})
	time.Sleep(5 * time.Millisecond)
	tr.RecordScan(ScanEvent{Operator: "third", Op: model.OpBatch})

	roster := tr.Roster(0)
	if len(roster) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(roster))
	}
	if roster[0].Operator != "third" || roster[2].Operator != "first" {
		t.Errorf("wrong order: %+v", roster)
	}
}

func TestSweep_MarksIdleOperators(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpPallet})
	tr.mu.Lock()
	tr.operators["op1"].lastSeen = time.Now().Add(-time.Hour)
	tr.mu.Unlock()

	var idled []string
	tr.sweep(&ReaperConfig{
		IdleThreshold: 30 * time.Minute,
		EvictAfter:    2 * time.Hour,
		OnIdle: func(operator, batch string) {
			idled = append(idled, operator+"/"+batch)
		},
	})

	if len(idled) != 1 || idled[0] != "op1/1234567" {
		t.Errorf("expected op1 idled with batch, got %v", idled)
	}
	roster := tr.Roster(0)
	if len(roster) != 1 || !roster[0].OffShift {
		t.Errorf("expected op1 off shift, got %+v", roster)
	}
}

func TestSweep_ReturningOperatorBackOnShift(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpPallet})
	tr.mu.Lock()
	tr.operators["op1"].lastSeen = time.Now().Add(-time.Hour)
	tr.mu.Unlock()
	tr.sweep(&ReaperConfig{IdleThreshold: 30 * time.Minute, EvictAfter: 2 * time.Hour})

	tr.RecordScan(ScanEvent{Operator: "op1", BatchNumber: "1234567", Op: model.OpQty})

	roster := tr.Roster(0)
	if len(roster) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(roster))
	}
	if roster[0].OffShift {
		t.Error("expected operator back on shift")
	}
	if roster[0].ScanCount != 2 {
		t.Errorf("expected 2 scans, got %d", roster[0].ScanCount)
	}
}

func TestSweep_EvictsAfterOffShift(t *testing.T) {
	tr := New()

	tr.RecordScan(ScanEvent{Operator: "op1", Op: model.OpBatch})
	tr.mu.Lock()
	state := tr.operators["op1"]
	state.lastSeen = time.Now().Add(-5 * time.Hour)
	state.offShift = true
	state.offShiftAt = time.Now().Add(-3 * time.Hour)
	tr.mu.Unlock()

	tr.sweep(&ReaperConfig{IdleThreshold: 30 * time.Minute, EvictAfter: 2 * time.Hour})

	tr.mu.RLock()
	_, exists := tr.operators["op1"]
	tr.mu.RUnlock()
	if exists {
		t.Error("expected operator evicted after off-shift window")
	}
}

func TestStartReaper_StopsCleanly(t *testing.T) {
	tr := New()
	tr.StartReaper(&ReaperConfig{SweepInterval: 50 * time.Millisecond})

	time.Sleep(150 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		tr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return within 2 seconds")
	}
}

package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/store/memory"
)

type fakeSource struct {
	records []core.Record
	err     error
	calls   atomic.Int64
}

func (f *fakeSource) ListRecords(ctx context.Context) ([]core.Record, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestRefresh(t *testing.T) {
	src := &fakeSource{records: []core.Record{
		{ID: "a", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()},
	}}
	snap := memory.New()
	invalidated := false
	w := NewRefresher(src, snap, time.Minute, func() { invalidated = true })

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("snapshot len = %d, want 1", snap.Len())
	}
	if !invalidated {
		t.Fatal("onRefresh hook not called")
	}
}

func TestRefreshKeepsSnapshotOnError(t *testing.T) {
	snap := memory.NewSeeded([]core.Record{
		{ID: "old", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()},
	})
	src := &fakeSource{err: errors.New("store down")}
	w := NewRefresher(src, snap, time.Minute, nil)

	if err := w.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failing source")
	}
	if snap.Len() != 1 {
		t.Fatalf("failed refresh replaced the snapshot, len = %d", snap.Len())
	}
}

func TestTriggerRefreshCoalesces(t *testing.T) {
	w := NewRefresher(&fakeSource{}, memory.New(), time.Minute, nil)
	// Many triggers before the worker drains must not block.
	for i := 0; i < 10; i++ {
		w.TriggerRefresh()
	}
	select {
	case <-w.trigger:
	default:
		t.Fatal("expected one pending trigger")
	}
	select {
	case <-w.trigger:
		t.Fatal("triggers did not coalesce")
	default:
	}
}

func TestHandleChangeSchedulesRefresh(t *testing.T) {
	w := NewRefresher(&fakeSource{}, memory.New(), time.Minute, nil)
	if err := w.HandleChange(amqp.NewChangeMessage(amqp.OpDelete, "42")); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}
	select {
	case <-w.trigger:
	default:
		t.Fatal("change event did not schedule a refresh")
	}
}

func TestRunRefreshesOnTrigger(t *testing.T) {
	src := &fakeSource{}
	w := NewRefresher(src, memory.New(), time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Initial refresh plus one triggered pass.
	w.TriggerRefresh()
	deadline := time.After(2 * time.Second)
	for src.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected 2 fetches, got %d", src.calls.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}

// Package worker keeps the in-memory snapshot in step with the remote
// store: a periodic full re-fetch plus on-demand refreshes triggered by
// change events.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/store"
)

// Refresher re-fetches the record collection and swaps it into the
// snapshot. All refreshes run on the Run goroutine, so a fetch in flight
// is never raced by another; triggers arriving mid-fetch coalesce into a
// single follow-up pass.
type Refresher struct {
	source    store.RecordSource
	snapshot  store.Snapshot
	interval  time.Duration
	onRefresh func()
	trigger   chan struct{}
}

func NewRefresher(source store.RecordSource, snapshot store.Snapshot, interval time.Duration, onRefresh func()) *Refresher {
	return &Refresher{
		source:    source,
		snapshot:  snapshot,
		interval:  interval,
		onRefresh: onRefresh,
		trigger:   make(chan struct{}, 1),
	}
}

// Refresh performs one fetch-and-swap pass.
func (w *Refresher) Refresh(ctx context.Context) error {
	records, err := w.source.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("refresh records: %w", err)
	}

	w.snapshot.Replace(records)
	if w.onRefresh != nil {
		w.onRefresh()
	}

	slog.InfoContext(ctx, "Snapshot refreshed", "count", len(records))
	return nil
}

// TriggerRefresh requests an out-of-band refresh. Non-blocking; multiple
// triggers before the worker gets to them collapse into one.
func (w *Refresher) TriggerRefresh() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// HandleChange is the AMQP consumer hook: any change event just schedules
// a refresh, the event payload itself is not trusted as data.
func (w *Refresher) HandleChange(msg *amqp.ChangeMessage) error {
	slog.Debug("Change event received", "op", msg.Op, "record_id", msg.RecordID)
	w.TriggerRefresh()
	return nil
}

// Run refreshes once at startup and then loops on the interval ticker and
// the trigger channel until ctx is done. A failed pass is logged and the
// previous snapshot stays in place; the next tick retries.
func (w *Refresher) Run(ctx context.Context) error {
	if err := w.Refresh(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial refresh failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Refresh worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		case <-w.trigger:
			if err := w.Refresh(ctx); err != nil {
				slog.ErrorContext(ctx, "Triggered refresh failed", "error", err)
			}
		}
	}
}

// Package relay implements the fetch-format-send-delete pass over pending
// rows and the fixed-interval loop that repeats it.
//
// Delivery is at-least-once by design: a row is deleted only after the send
// was acknowledged, and a delete failure (or a crash between send and delete)
// leaves the row in place to be resent on a later cycle. Nothing is re-queued
// in memory.
package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"relaybot/internal/store"
	"relaybot/pkg/logx"
)

type Source interface {
	FetchPending(ctx context.Context) ([]store.Record, error)
}

type Sink interface {
	DeleteByIDs(ctx context.Context, ids []int64) (int64, error)
}

type Notifier interface {
	Send(ctx context.Context, text string) error
}

type Options struct {
	// PollInterval is the sleep between cycles.
	PollInterval time.Duration
	// SendPause is inserted after every send attempt, success or failure,
	// to stay under the messaging endpoint's rate limits.
	SendPause time.Duration
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = 30 * time.Second
	}
	if o.SendPause <= 0 {
		o.SendPause = time.Second
	}
	return o
}

// CycleResult is the transient outcome of one pass. Sent holds the
// identifiers that were acknowledged, in success order; it is consumed by
// the delete step and then discarded.
type CycleResult struct {
	Fetched int
	Sent    []int64
	Deleted int64
	Err     error
}

// Relay orchestrates single passes over the pending view.
// It owns no persisted state; the data store is the system of record.
type Relay struct {
	src      Source
	sink     Sink
	notifier Notifier
	log      logx.Logger
	opts     Options

	mu    sync.Mutex
	stats Stats
}

func New(src Source, sink Sink, notifier Notifier, log logx.Logger, opts Options) *Relay {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Relay{
		src:      src,
		sink:     sink,
		notifier: notifier,
		log:      log,
		opts:     opts.withDefaults(),
		stats:    Stats{Started: time.Now()},
	}
}

// RunCycle performs one fetch-format-send-delete pass.
//
// Failures never escape: a fetch error yields an empty pass, a send failure
// skips only that record, a delete failure leaves rows for the next cycle.
// A panic anywhere in the pass is reported through CycleResult.Err.
func (r *Relay) RunCycle(ctx context.Context) (res CycleResult) {
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("relay cycle panic: %v", p)
		}
		r.record(res)
	}()

	records, err := r.src.FetchPending(ctx)
	if err != nil {
		r.log.Error("fetching pending messages failed", logx.Err(err))
		return res
	}
	res.Fetched = len(records)
	if len(records) == 0 {
		r.log.Debug("no pending messages")
		return res
	}

	for _, rec := range records {
		if err := r.sendOne(ctx, rec); err != nil {
			r.log.Warn("failed to send message", logx.Int64("record_id", rec.ID), logx.Err(err))
		} else {
			res.Sent = append(res.Sent, rec.ID)
		}
		// Fixed pause after every attempt, success or failure.
		_ = sleep(ctx, r.opts.SendPause)
	}

	if len(res.Sent) > 0 {
		deleted, err := r.sink.DeleteByIDs(ctx, res.Sent)
		if err != nil {
			// Rows stay in the store and are resent next cycle.
			r.log.Error("deleting processed rows failed",
				logx.Err(err), logx.Int("ids", len(res.Sent)))
		} else {
			res.Deleted = deleted
		}
	}

	r.log.Info("cycle completed",
		logx.Int("fetched", res.Fetched),
		logx.Int("sent", len(res.Sent)),
		logx.Int64("deleted", res.Deleted))
	return res
}

// sendOne formats and sends a single record. A panic while processing the
// record is confined to it, so one bad row never aborts the batch.
func (r *Relay) sendOne(ctx context.Context, rec store.Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("record processing panic: %v", p)
		}
	}()
	return r.notifier.Send(ctx, FormatRecord(rec))
}

// Run repeats RunCycle forever at the poll interval until ctx is cancelled.
// Cancellation is only observed between cycles and during the interval
// sleep; a cycle in progress runs to completion on its own context.
func (r *Relay) Run(ctx context.Context) error {
	r.log.Info("relay started", logx.Duration("poll_interval", r.opts.PollInterval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("shutdown signal received")
			return nil
		default:
		}

		r.cycleGuarded()

		if err := sleep(ctx, r.opts.PollInterval); err != nil {
			r.log.Info("shutdown signal received")
			return nil
		}
	}
}

// cycleGuarded is the loop-level half of the double catch: RunCycle already
// recovers its own panics, and this recover keeps the loop alive even if
// that boundary is somehow breached. The loop still sleeps the full interval
// afterwards rather than spinning.
func (r *Relay) cycleGuarded() {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("unexpected error in relay loop", logx.Any("panic", p))
		}
	}()

	res := r.RunCycle(context.Background())
	if res.Err != nil {
		r.log.Error("relay cycle failed", logx.Err(res.Err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

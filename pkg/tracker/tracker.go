// Package tracker implements the fetch-compare-persist-notify loop.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atlwatch/pkg/core"
	"atlwatch/pkg/logger"

	"github.com/jpillora/backoff"
)

// Outcome describes what a single observed price did to the record.
type Outcome int

const (
	NoChange    Outcome = iota // price >= stored low, record untouched
	Initialized                // first ever price, record created
	NewLow                     // strictly lower price, record rewritten
)

// Evaluate applies one observed price to the record. It is pure: no I/O,
// no clock reads. Ties are not a new low and do not rewrite the record.
func Evaluate(record core.AtlRecord, exists bool, price float64, now time.Time) (core.AtlRecord, Outcome) {
	if !exists {
		return core.AtlRecord{AllTimeLow: price, LastChecked: now}, Initialized
	}

	if price < record.AllTimeLow {
		return core.AtlRecord{AllTimeLow: price, LastChecked: now}, NewLow
	}

	return record, NoChange
}

// Tracker runs the loop: one fully sequential tick per interval, nothing
// in a tick is fatal to the loop.
type Tracker struct {
	asset    string
	source   core.PriceSource
	storage  core.RecordStorage
	notifier core.Notifier
	log      logger.Logger
	interval time.Duration
	attempts int
	now      func() time.Time
}

// Option is a function that configures a Tracker
type Option func(*Tracker)

// WithNotifier sets the notification channel for new lows.
func WithNotifier(notifier core.Notifier) Option {
	return func(t *Tracker) {
		t.notifier = notifier
	}
}

// WithFetchAttempts sets how many times a tick retries the price fetch
// before giving up until the next tick.
func WithFetchAttempts(attempts int) Option {
	return func(t *Tracker) {
		t.attempts = attempts
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a Tracker for the given asset.
func New(asset string, source core.PriceSource, storage core.RecordStorage,
	interval time.Duration, log logger.Logger, options ...Option) *Tracker {

	t := &Tracker{
		asset:    asset,
		source:   source,
		storage:  storage,
		log:      log,
		interval: interval,
		attempts: 3,
		now:      time.Now,
	}

	for _, option := range options {
		option(t)
	}

	return t
}

// Run ticks immediately and then once per interval until ctx is done.
// Tick errors are logged and skipped; they never stop the loop.
func (t *Tracker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if err := t.Tick(ctx); err != nil {
		t.log.WithError(err).Warn("tick skipped")
	}

	for {
		select {
		case <-ctx.Done():
			t.log.Info("tracker stopping")
			return nil
		case <-ticker.C:
			if err := t.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					t.log.Info("tracker stopping")
					return nil
				}
				t.log.WithError(err).Warn("tick skipped")
			}
		}
	}
}

// Tick performs one fetch-compare-persist-notify pass. The returned error
// means the tick was abandoned; the persisted low is never touched on a
// failed tick.
func (t *Tracker) Tick(ctx context.Context) error {
	price, err := t.fetch(ctx)
	if err != nil {
		return fmt.Errorf("price fetch: %w", err)
	}

	record, exists, err := t.storage.Load()
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	next, outcome := Evaluate(record, exists, price, t.now())

	switch outcome {
	case Initialized:
		if err := t.storage.Save(next); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		t.log.WithField("price", price).Infof("initial %s all-time low set: %.4f", t.asset, price)

	case NewLow:
		// Persist before notifying: a failed notification must not
		// lose the new low.
		if err := t.storage.Save(next); err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		t.log.Infof("new %s all-time low: %.4f (was %.4f)", t.asset, next.AllTimeLow, record.AllTimeLow)
		if t.notifier != nil {
			t.notifier.Notify(newLowMessage(t.asset, next.AllTimeLow, record.AllTimeLow))
		}

	default:
		t.log.Debugf("%s price %.4f, all-time low %.4f", t.asset, price, record.AllTimeLow)
	}

	return nil
}

// fetch retries transient source failures within the tick.
func (t *Tracker) fetch(ctx context.Context) (float64, error) {
	retry := &backoff.Backoff{
		Min:    100 * time.Millisecond,
		Max:    1 * time.Second,
		Jitter: true,
	}

	var lastErr error
	for attempt := 0; attempt < t.attempts; attempt++ {
		price, err := t.source.Current(ctx)
		if err == nil {
			return price, nil
		}
		lastErr = err

		if attempt == t.attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(retry.Duration()):
		}
	}

	return 0, lastErr
}

// StatusText formats the persisted state for the /status command.
func StatusText(storage core.RecordStorage, asset string) string {
	record, exists, err := storage.Load()
	if err != nil {
		return fmt.Sprintf("%s status unavailable: %v", asset, err)
	}
	if !exists {
		return fmt.Sprintf("No %s low recorded yet.", asset)
	}

	return fmt.Sprintf("%s all-time low: $%.4f\nLast checked: %s",
		asset, record.AllTimeLow, record.LastChecked.Format(time.RFC3339))
}

func newLowMessage(asset string, current, previous float64) string {
	drop := (previous - current) / previous * 100
	return fmt.Sprintf(
		"<b>NEW %s ALL-TIME LOW!</b>\n\nPrice: <b>$%.4f</b>\nPrevious ATL: $%.4f\nDrop: %.2f%%",
		strings.ToUpper(asset), current, previous, drop)
}

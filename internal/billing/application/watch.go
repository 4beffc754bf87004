package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultWatchInterval is how often Watch refreshes the dashboard.
const DefaultWatchInterval = time.Second

// Ticker abstracts time.Ticker so tests can drive Watch by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Watcher re-reads the latest subscription snapshot on every tick.
type Watcher struct {
	service   *Service
	now       func() time.Time
	newTicker func(time.Duration) Ticker
}

// NewWatcher creates a watcher on the wall clock.
func NewWatcher(service *Service) *Watcher {
	return &Watcher{
		service:   service,
		now:       time.Now,
		newTicker: func(d time.Duration) Ticker { return realTicker{t: time.NewTicker(d)} },
	}
}

// WithClock replaces the clock and ticker source.
func (w *Watcher) WithClock(now func() time.Time, newTicker func(time.Duration) Ticker) *Watcher {
	w.now = now
	w.newTicker = newTicker
	return w
}

// Watch emits a dashboard immediately and then once per interval until ctx
// is cancelled or fn returns an error. A cancelled context is not an error.
func (w *Watcher) Watch(ctx context.Context, accountID uuid.UUID, interval time.Duration, fn func(Dashboard) error) error {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	emit := func() error {
		d, err := w.service.Dashboard(ctx, accountID, w.now())
		if err != nil {
			return err
		}
		return fn(d)
	}

	if err := emit(); err != nil {
		return err
	}

	ticker := w.newTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			if err := emit(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

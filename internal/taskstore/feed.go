package taskstore

import (
	"context"
	"sync"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// FeedSource is a push channel of row-level change events for the
// authenticated owner. Subscribe returns an unsubscribe function that must
// be safe to call more than once.
type FeedSource interface {
	Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (func(), error)
}

// Feed binds a push subscription to a store. Task events are reconciled into
// the store in arrival order; every event is also forwarded to the optional
// sink (the notification relay listens there). Loss of the underlying
// channel is not retried here; the owner re-attaches on its next load.
type Feed struct {
	mu    sync.Mutex
	store *Store
	sink  func(models.ChangeEvent)
	stop  func()
}

// NewFeed creates a detached feed for store. sink may be nil.
func NewFeed(store *Store, sink func(models.ChangeEvent)) *Feed {
	return &Feed{store: store, sink: sink}
}

// Attach subscribes to src, replacing any previous subscription.
func (f *Feed) Attach(ctx context.Context, src FeedSource) error {
	f.Detach()

	stop, err := src.Subscribe(ctx, f.handle)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.stop = stop
	f.mu.Unlock()
	return nil
}

// Detach tears down the current subscription. It is unconditional and
// idempotent: safe to call when nothing was ever attached.
func (f *Feed) Detach() {
	f.mu.Lock()
	stop := f.stop
	f.stop = nil
	f.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// Attached reports whether a subscription is currently established.
func (f *Feed) Attached() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stop != nil
}

func (f *Feed) handle(ev models.ChangeEvent) {
	f.store.Apply(ev)
	if f.sink != nil {
		f.sink(ev)
	}
}

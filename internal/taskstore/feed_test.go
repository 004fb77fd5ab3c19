package taskstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// fakeFeedSource hands the subscriber callback back to the test.
type fakeFeedSource struct {
	mu      sync.Mutex
	onEvent func(models.ChangeEvent)
	stops   int
	subErr  error
}

func (f *fakeFeedSource) Subscribe(ctx context.Context, onEvent func(models.ChangeEvent)) (func(), error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.mu.Lock()
	f.onEvent = onEvent
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		f.stops++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeedSource) push(ev models.ChangeEvent) {
	f.mu.Lock()
	fn := f.onEvent
	f.mu.Unlock()
	fn(ev)
}

func (f *fakeFeedSource) stopCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func TestFeed_EventsReachStoreAndSink(t *testing.T) {
	store := NewBacked(&fakeBackend{}, nil)
	require.NoError(t, store.Load(context.Background(), "owner-1"))

	var sunk []models.ChangeEvent
	feed := NewFeed(store, func(ev models.ChangeEvent) { sunk = append(sunk, ev) })

	src := &fakeFeedSource{}
	require.NoError(t, feed.Attach(context.Background(), src))
	assert.True(t, feed.Attached())

	task := models.Task{ID: "t1", OwnerID: "owner-1", Title: "pushed"}
	src.push(models.ChangeEvent{Type: models.EventInsert, Table: models.TableTasks, Task: &task})

	assert.Len(t, store.Snapshot(), 1)
	require.Len(t, sunk, 1)
	assert.Equal(t, models.EventInsert, sunk[0].Type)
}

func TestFeed_SinkSeesNotificationEvents(t *testing.T) {
	store := NewBacked(&fakeBackend{}, nil)
	require.NoError(t, store.Load(context.Background(), "owner-1"))

	var sunk []models.ChangeEvent
	feed := NewFeed(store, func(ev models.ChangeEvent) { sunk = append(sunk, ev) })

	src := &fakeFeedSource{}
	require.NoError(t, feed.Attach(context.Background(), src))

	n := models.Notification{ID: "n1", OwnerID: "owner-1", Message: "hi"}
	src.push(models.ChangeEvent{Type: models.EventInsert, Table: models.TableNotifications, Notification: &n})

	// Task list untouched, but the sink got the event.
	assert.Empty(t, store.Snapshot())
	assert.Len(t, sunk, 1)
}

func TestFeed_DetachIsUnconditionalAndIdempotent(t *testing.T) {
	store := NewBacked(&fakeBackend{}, nil)
	feed := NewFeed(store, nil)

	// Detach before any attach is a no-op.
	feed.Detach()
	assert.False(t, feed.Attached())

	src := &fakeFeedSource{}
	require.NoError(t, feed.Attach(context.Background(), src))

	feed.Detach()
	feed.Detach()
	assert.False(t, feed.Attached())
	assert.Equal(t, 1, src.stopCount(), "repeated Detach must not re-run teardown")
}

func TestFeed_ReattachReplacesSubscription(t *testing.T) {
	store := NewBacked(&fakeBackend{}, nil)
	feed := NewFeed(store, nil)

	first := &fakeFeedSource{}
	require.NoError(t, feed.Attach(context.Background(), first))

	second := &fakeFeedSource{}
	require.NoError(t, feed.Attach(context.Background(), second))

	assert.Equal(t, 1, first.stopCount(), "attaching again tears down the old subscription")
	assert.True(t, feed.Attached())
}

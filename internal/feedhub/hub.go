// Package feedhub fans row-level change events out to per-owner subscribers.
// It is the in-process half of the push channel; the HTTP layer exposes each
// subscription as a server-sent-events stream.
package feedhub

import (
	"log"
	"sync"

	"github.com/adithyakesavan/taskdeck/internal/models"
)

// subscriberBuffer is the channel depth per subscriber. A subscriber that
// falls this far behind starts losing events; the client recovers on its
// next full load.
const subscriberBuffer = 16

// Hub is a mutex-guarded registry of change-event subscribers keyed by owner.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan models.ChangeEvent
	nextID uint64
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[uint64]chan models.ChangeEvent),
	}
}

// Subscribe registers a new subscriber for ownerID and returns its event
// channel together with a cancel function. Cancel is idempotent and closes
// the channel.
func (h *Hub) Subscribe(ownerID string) (<-chan models.ChangeEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[ownerID] == nil {
		h.subs[ownerID] = make(map[uint64]chan models.ChangeEvent)
	}

	h.nextID++
	id := h.nextID
	ch := make(chan models.ChangeEvent, subscriberBuffer)
	h.subs[ownerID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if owned, ok := h.subs[ownerID]; ok {
				if c, ok := owned[id]; ok {
					delete(owned, id)
					close(c)
				}
				if len(owned) == 0 {
					delete(h.subs, ownerID)
				}
			}
		})
	}

	return ch, cancel
}

// Publish delivers ev to every current subscriber of ownerID. Subscribers
// with a full buffer are skipped; publishing never blocks.
func (h *Hub) Publish(ownerID string, ev models.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs[ownerID] {
		select {
		case ch <- ev:
		default:
			log.Printf("feedhub: dropping %s event for slow subscriber %d", ev.Type, id)
		}
	}
}

// SubscriberCount returns the number of active subscribers for an owner.
func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[ownerID])
}

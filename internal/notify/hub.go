// Package notify fans game events out to subscribers.
package notify

import (
	"log/slog"
	"sync"
)

// EventType names what happened in a game.
type EventType string

const (
	EventPlayerJoined          EventType = "player.joined"
	EventPlayerDeactivated     EventType = "player.deactivated"
	EventRequestSubmitted      EventType = "request.submitted"
	EventRequestResolved       EventType = "request.resolved"
	EventCheckoutRequested     EventType = "checkout.requested"
	EventGameSettling          EventType = "game.settling"
	EventCheckoutChanged       EventType = "checkout.changed"
	EventInputLocked           EventType = "checkout.input_locked"
	EventInputUnlocked         EventType = "checkout.input_unlocked"
	EventDistributionCommitted EventType = "distribution.committed"
	EventGameClosed            EventType = "game.closed"
)

// Event is a notification about a committed change.
type Event struct {
	Type      EventType
	GameID    string
	PlayerID  string
	RequestID string
	// Status carries the new request or checkout status, if any.
	Status  string
	Version int64
	At      int64
}

// Publisher delivers events. Publish must not block.
type Publisher interface {
	Publish(e Event)
}

// DefaultBuffer is the channel buffer size for each subscriber.
const DefaultBuffer = 16

// Hub is an in-process Publisher with per-game subscriber sets.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers for a game's events. The returned cancel function
// unregisters and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(gameID string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[chan Event]struct{})
	}
	h.subs[gameID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[gameID], ch)
			if len(h.subs[gameID]) == 0 {
				delete(h.subs, gameID)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish sends the event to every subscriber of its game. A subscriber whose
// buffer is full misses the event; clients re-read state on reconnect.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dropped := 0
	for ch := range h.subs[e.GameID] {
		select {
		case ch <- e:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		slog.Warn("notify: subscribers too slow, event dropped",
			"game_id", e.GameID,
			"event", e.Type,
			"dropped", dropped,
		)
	}
}

// SubscriberCount returns the number of live subscriptions for a game.
func (h *Hub) SubscriberCount(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[gameID])
}

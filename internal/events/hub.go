package events

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/mattjoyce/playhook/internal/player"
	"github.com/mattjoyce/playhook/internal/shellevents"
)

// Stream event types.
const (
	TypeEventReceived   = "event.received"
	TypeCommandExecuted = "command.executed"
)

const subscriberBuffer = 64

// Event is one record on the stream. IDs increase by one per publish.
type Event struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data"`
}

// CommandExecuted is the payload of TypeCommandExecuted.
type CommandExecuted struct {
	Event      string `json:"event"`
	Command    string `json:"command"`
	Mode       string `json:"mode"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

type subscriber struct {
	ch    chan Event
	types []string
}

func (s subscriber) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// Hub fans published events out to subscribers and keeps the most recent
// ones for clients that connect late.
type Hub struct {
	mu       sync.Mutex
	lastID   int64
	backlog  []Event
	capacity int

	subs      map[int]subscriber
	nextSubID int
}

var _ shellevents.Observer = (*Hub)(nil)

// NewHub creates a hub retaining up to capacity events (100 when <= 0).
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 100
	}
	return &Hub{
		backlog:  make([]Event, 0, capacity),
		capacity: capacity,
		subs:     make(map[int]subscriber),
	}
}

// Publish marshals data and delivers it to every interested subscriber.
// Subscribers whose buffer is full miss the event.
func (h *Hub) Publish(eventType string, data any) {
	payload := json.RawMessage("{}")
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = b
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastID++
	ev := Event{ID: h.lastID, Type: eventType, At: time.Now().UTC(), Data: payload}

	if len(h.backlog) == h.capacity {
		h.backlog = slices.Delete(h.backlog, 0, 1)
	}
	h.backlog = append(h.backlog, ev)

	for _, s := range h.subs {
		if !s.wants(eventType) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
}

// PublishReceived records a player event accepted by a source.
func (h *Hub) PublishReceived(ev player.Event) {
	h.Publish(TypeEventReceived, ev)
}

// Observe publishes a command outcome. It never blocks on subscribers.
func (h *Hub) Observe(_ context.Context, outcome shellevents.Outcome) {
	payload := CommandExecuted{
		Event:      string(outcome.Event),
		Command:    outcome.Command,
		Mode:       string(outcome.Mode),
		ExitCode:   outcome.ExitCode,
		DurationMs: outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		payload.Error = outcome.Err.Error()
	}
	h.Publish(TypeCommandExecuted, payload)
}

// Subscribe returns a channel of new events limited to types (all when empty)
// and a cancel func that closes it. Cancel may be called more than once.
func (h *Hub) Subscribe(types ...string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	s := subscriber{ch: make(chan Event, subscriberBuffer), types: slices.Clone(types)}
	h.subs[id] = s

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Since returns retained events with ID > lastID, oldest first, limited to
// types (all when empty).
func (h *Hub) Since(lastID int64, types ...string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	filter := subscriber{types: types}
	var out []Event
	for _, ev := range h.backlog {
		if ev.ID > lastID && filter.wants(ev.Type) {
			out = append(out, ev)
		}
	}
	return out
}

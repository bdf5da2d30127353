package events

import (
	"sync"
	"time"
)

// Event names published by a planning session.
const (
	RoutePreview            = "routePreview"
	SimulationStart         = "simulationStart"
	SimulationUpdate        = "simulationUpdate"
	SimulationStatusChanged = "simulationStatusChanged"
	SimulationComplete      = "simulationComplete"
	ConflictChecked         = "conflictChecked"
)

// All subscribes to every event name.
const All = "*"

// Event is one published signal.
type Event struct {
	Name    string    `json:"event"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}

type Handler func(Event)

// Publisher is the narrow interface producers depend on.
type Publisher interface {
	Publish(name string, payload any)
}

// Bus is a synchronous named-event dispatcher. Handlers run on the
// publishing goroutine, after the bus lock is released, so a handler may
// subscribe or unsubscribe without deadlocking.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[string]map[uint64]Handler
	closed   bool
	now      func() time.Time
}

var _ Publisher = (*Bus)(nil)

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string]map[uint64]Handler),
		now:      time.Now,
	}
}

// Subscription removes its handler when Unsubscribe is called. Calling it
// more than once is harmless.
type Subscription struct {
	bus  *Bus
	name string
	id   uint64
	once sync.Once
}

// Subscribe registers h for events called name, or for every event when
// name is All.
func (b *Bus) Subscribe(name string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{bus: b, name: name, id: b.nextID}
	if b.closed {
		return sub
	}

	set, ok := b.handlers[name]
	if !ok {
		set = make(map[uint64]Handler)
		b.handlers[name] = set
	}
	set[sub.id] = h
	return sub
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		if set, ok := s.bus.handlers[s.name]; ok {
			delete(set, s.id)
			if len(set) == 0 {
				delete(s.bus.handlers, s.name)
			}
		}
	})
}

// Publish delivers to named handlers first, then to wildcard handlers.
func (b *Bus) Publish(name string, payload any) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	targets := make([]Handler, 0, len(b.handlers[name])+len(b.handlers[All]))
	for _, h := range b.handlers[name] {
		targets = append(targets, h)
	}
	if name != All {
		for _, h := range b.handlers[All] {
			targets = append(targets, h)
		}
	}
	ev := Event{Name: name, Payload: payload, At: b.now()}
	b.mu.RUnlock()

	for _, h := range targets {
		h(ev)
	}
}

// Count returns the number of live subscriptions.
func (b *Bus) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, set := range b.handlers {
		n += len(set)
	}
	return n
}

// Close drops every subscription and ignores later publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.handlers = make(map[string]map[uint64]Handler)
}

package auth

import "sync"

// EventType mirrors the auth-state change events the verification gate
// listens for.
type EventType string

const (
	EventSignedIn      EventType = "SIGNED_IN"
	EventEmailVerified EventType = "EMAIL_VERIFIED"
)

// Event is one auth-state change notification.
type Event struct {
	Type      EventType
	UserID    string
	Email     string
	Confirmed bool
}

// Bus fans auth-state events out to subscribers. Sends never block: a
// subscriber that stopped draining just misses events, which is acceptable
// because every consumer also polls.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel and an unsubscribe func. Unsubscribe
// closes the channel; callers must not use it afterwards.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 8)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
	}
}

// Publish delivers e to all current subscribers without blocking.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

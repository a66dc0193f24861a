package verify

import "sync"

// Channel carries the "email verified" announcement between open sessions of
// the same user, the way a same-origin BroadcastChannel does between tabs:
// whichever gate observes confirmation first announces it, and every other
// gate stops polling instead of rediscovering it.
type Channel struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewChannel() *Channel {
	return &Channel{subs: make(map[int]chan struct{})}
}

// Subscribe returns a signal channel and an unsubscribe func.
func (c *Channel) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	ch := make(chan struct{}, 1)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if s, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(s)
		}
	}
}

// Announce signals every subscriber without blocking.
func (c *Channel) Announce() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

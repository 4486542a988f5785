package authclient

import "sync"

// ReasonTokenRefreshFailed is published when a refresh attempt fails
// irrecoverably and the stored tokens have been cleared.
const ReasonTokenRefreshFailed = "token_refresh_failed"

// AuthFailureEvent signals a session-wide authentication failure. Collaborators
// (routing, notification) consume it; this package never performs navigation
// itself.
type AuthFailureEvent struct {
	Reason string
}

// failureBroadcaster fans AuthFailureEvents out to subscribers. Scoped to a
// SessionClient, never process-global.
type failureBroadcaster struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]func(AuthFailureEvent)
}

func newFailureBroadcaster() *failureBroadcaster {
	return &failureBroadcaster{
		subscribers: make(map[int]func(AuthFailureEvent)),
	}
}

// subscribe registers fn and returns an unsubscribe function.
func (b *failureBroadcaster) subscribe(fn func(AuthFailureEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// publish delivers the event to every subscriber synchronously. Delivery
// order is not guaranteed.
func (b *failureBroadcaster) publish(event AuthFailureEvent) {
	b.mu.Lock()
	fns := make([]func(AuthFailureEvent), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

package authstate

import (
	"context"
	"sync"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// Broadcaster fans auth state transitions out to subscribed listeners.
// Listeners run synchronously on the emitting goroutine, in subscription
// order, outside the lock.
type Broadcaster struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]repository.AuthStateListener
	order     []uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: map[uint64]repository.AuthStateListener{}}
}

type subscription struct {
	b    *Broadcaster
	id   uint64
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() { s.b.remove(s.id) })
}

// Subscribe registers fn and returns its handle.
func (b *Broadcaster) Subscribe(fn repository.AuthStateListener) repository.Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	id := b.next
	b.listeners[id] = fn
	b.order = append(b.order, id)
	return &subscription{b: b, id: id}
}

func (b *Broadcaster) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Emit delivers one transition to every listener.
func (b *Broadcaster) Emit(ctx context.Context, event entity.AuthEvent, session *entity.AuthSession) {
	b.mu.Lock()
	fns := make([]repository.AuthStateListener, 0, len(b.order))
	for _, id := range b.order {
		fns = append(fns, b.listeners[id])
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ctx, event, session)
	}
}

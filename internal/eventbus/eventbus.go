// Package eventbus implements the mutation notifications the engines emit.
// Listeners are zero-argument callbacks invoked synchronously after every
// successful mutating operation.
package eventbus

import (
	"log/slog"
	"sync"
)

// Bus fans out change notifications to registered listeners.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		listeners: make(map[int]func()),
	}
}

// Subscribe registers fn and returns a function that removes it again.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Notify invokes every registered listener. A panicking listener is logged
// and must not prevent the remaining listeners from running.
func (b *Bus) Notify() {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		invoke(fn)
	}
}

// Len returns the number of registered listeners.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event listener panicked", "panic", r)
		}
	}()
	fn()
}

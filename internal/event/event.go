// Package event fans state notifications out to subscribers without the
// publisher knowing who listens.
package event

import (
	"log"
	"sync"
)

// Kind identifies a class of notification.
type Kind int

// Handler receives a notification payload.
type Handler[T any] func(kind Kind, payload T)

// Bus delivers notifications synchronously, in subscription order, so that a
// subscriber observes events in the order they were published.
type Bus[T any] struct {
	mu          sync.RWMutex
	subscribers map[Kind][]Handler[T]
	logger      *log.Logger
}

// NewBus constructs an empty bus.
func NewBus[T any](logger *log.Logger) *Bus[T] {
	if logger == nil {
		logger = log.Default()
	}
	return &Bus[T]{
		subscribers: make(map[Kind][]Handler[T]),
		logger:      logger,
	}
}

// Subscribe registers handler for kind.
func (b *Bus[T]) Subscribe(kind Kind, handler Handler[T]) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], handler)
}

// Publish calls every handler registered for kind. A panicking handler is
// logged and does not stop delivery to the rest.
func (b *Bus[T]) Publish(kind Kind, payload T) {
	b.mu.RLock()
	handlers := append([]Handler[T](nil), b.subscribers[kind]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.deliver(h, kind, payload)
	}
}

func (b *Bus[T]) deliver(h Handler[T], kind Kind, payload T) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Printf("event: handler for kind %d panicked: %v", kind, r)
		}
	}()
	h(kind, payload)
}

// Package events provides an in-memory publish/subscribe broker that
// surfaces pipeline progress (ingestion, report generation) to
// interested listeners without coupling them to the pipeline.
package events

import (
	"context"
	"sync"
)

const defaultBufferSize = 64

// Type identifies what happened.
type Type string

const (
	IngestStarted  Type = "ingest_started"
	IngestFinished Type = "ingest_finished"
)

// Event is one occurrence with its typed payload.
type Event[T any] struct {
	Type    Type
	Payload T
}

// Publisher is the sending side of a broker.
type Publisher[T any] interface {
	Publish(Type, T)
}

// Broker fans events out to all active subscribers. Publishing never
// blocks; a subscriber whose buffer is full misses the event.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[chan Event[T]]struct{}
	done    chan struct{}
	bufSize int
}

func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

func NewBrokerWithBuffer[T any](bufferSize int) *Broker[T] {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Broker[T]{
		subs:    make(map[chan Event[T]]struct{}),
		done:    make(chan struct{}),
		bufSize: bufferSize,
	}
}

// Subscribe registers a listener. The returned channel closes when ctx
// is done or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := make(chan Event[T], b.bufSize)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			// Shutdown closes the channel itself.
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return
		default:
		}
		if _, ok := b.subs[sub]; ok {
			delete(b.subs, sub)
			close(sub)
		}
	}()

	return sub
}

// Publish delivers an event to every active subscriber without
// blocking.
func (b *Broker[T]) Publish(t Type, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	event := Event[T]{Type: t, Payload: payload}
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
		}
	}
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Shutdown closes the broker and every subscriber channel. Later
// publishes are dropped and later subscribes get a closed channel.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}
	close(b.done)

	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// Package event provides synchronous, ordered broadcast streams.
//
// A Stream delivers every published value to each subscriber in
// subscription order before Publish returns. Handlers may publish to other
// streams (or to the same one) while being called; nested publications are
// delivered depth-first, so a cascade triggered by one mutation is fully
// observed before control returns to the code that started it.
package event

import "sync"

// Source is the subscribe-only side of a Stream
type Source[T any] interface {
	Subscribe(fn func(T)) (unsubscribe func())
}

// Stream broadcasts values of type T to registered handlers
type Stream[T any] struct {
	mu       sync.RWMutex
	nextID   int
	handlers []handler[T]
}

type handler[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it again
func (s *Stream[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, handler[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *Stream[T]) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, h := range s.handlers {
		if h.id == id {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every handler registered at the time of the call.
// The subscriber list is not locked while handlers run.
func (s *Stream[T]) Publish(v T) {
	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()

	for _, h := range handlers {
		h.fn(v)
	}
}

// Len returns the number of subscribers
func (s *Stream[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers)
}

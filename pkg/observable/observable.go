// Package observable provides a synchronous change-notification capability.
//
// A [Subject] keeps an explicit listener list. Mutating types embed or hold a
// Subject and call [Subject.Notify] after each change; listeners run on the
// caller's goroutine, in subscription order, before Notify returns.
//
//	var s observable.Subject[string]
//	id := s.Subscribe(func(field string) { fmt.Println("changed:", field) })
//	s.Notify("Radius") // prints "changed: Radius"
//	s.Unsubscribe(id)
package observable

import "sync"

// Observable is the capability exposed to subscribers.
type Observable[T any] interface {
	// Subscribe registers fn and returns a token for Unsubscribe.
	Subscribe(fn func(T)) Subscription
	// Unsubscribe removes a listener. Unknown tokens are ignored.
	Unsubscribe(Subscription)
}

// Subscription identifies a registered listener.
type Subscription uint64

type listener[T any] struct {
	id Subscription
	fn func(T)
}

// Subject is a listener list. The zero value is ready to use.
type Subject[T any] struct {
	mu        sync.Mutex
	next      Subscription
	listeners []listener[T]
}

// Subscribe registers fn.
func (s *Subject[T]) Subscribe(fn func(T)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.listeners = append(s.listeners, listener[T]{id: s.next, fn: fn})
	return s.next
}

// Unsubscribe removes the listener registered under id.
func (s *Subject[T]) Unsubscribe(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered listeners.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Notify calls every listener with v. Listeners may subscribe or unsubscribe
// during notification; such changes take effect on the next Notify.
func (s *Subject[T]) Notify(v T) {
	s.mu.Lock()
	snapshot := make([]listener[T], len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()

	for _, l := range snapshot {
		l.fn(v)
	}
}

var _ Observable[int] = (*Subject[int])(nil)

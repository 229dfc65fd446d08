// Package store provides a single-writer observable state container.
//
// A Store owns exactly one current value. Reduce is the only write path:
// it replaces the value with reducer(current) and publishes the result.
// Select derives observables that emit projections of the state, skipping
// a value when it equals the previous one seen by that subscription.
package store

import (
	"slices"
	"sync"
	"sync/atomic"
)

// notification is one published state waiting to be delivered.
// A non-nil target means the entry primes a single new subscriber.
type notification[S any] struct {
	seq    uint64
	state  S
	target *subscriber[S]
}

type subscriber[S any] struct {
	since   uint64 // last state version this subscriber has seen
	active  atomic.Bool
	deliver func(S)
}

// Store holds the current state and its subscribers.
type Store[S any] struct {
	mu       sync.Mutex
	state    S
	equal    func(a, b S) bool
	seq      uint64
	subs     []*subscriber[S] // in subscription order
	queue    []notification[S]
	flushing bool
}

// New creates a store holding initial. equal is used by the identity
// selection; a nil equal treats every published state as a change.
func New[S any](initial S, equal func(a, b S) bool) *Store[S] {
	if equal == nil {
		equal = func(S, S) bool { return false }
	}
	return &Store[S]{
		state: initial,
		equal: equal,
	}
}

// State returns the current state.
func (s *Store[S]) State() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribers returns the number of live subscriptions.
func (s *Store[S]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Reduce replaces the state with reducer(current) and queues the result for
// every subscriber.
//
// If no other call is delivering, Reduce delivers the queue itself and
// returns once subscribers have seen the new state. Otherwise it returns
// right after the commit and the goroutine already delivering sends the
// notification, in publish order. This covers both a Reduce from inside a
// subscriber and a Reduce racing one on another goroutine. State() always
// reflects the commit on return.
//
// The reducer runs under the store lock and must not call back into the
// store. A panicking reducer propagates to the caller and leaves the state
// untouched.
func (s *Store[S]) Reduce(reducer func(S) S) {
	if s.commit(reducer) {
		s.drain()
	}
}

// commit applies the reducer and queues the result. It reports whether the
// caller has to deliver the queue.
func (s *Store[S]) commit(reducer func(S) S) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := reducer(s.state)
	s.state = next
	s.seq++
	s.queue = append(s.queue, notification[S]{seq: s.seq, state: next})
	return s.claim()
}

// claim marks the queue as being drained. Must be called with mu held.
func (s *Store[S]) claim() bool {
	if s.flushing {
		return false
	}
	s.flushing = true
	return true
}

// drain delivers queued notifications in publish order until the queue is
// empty. Only one goroutine drains at a time.
func (s *Store[S]) drain() {
	finished := false
	defer func() {
		if !finished {
			// A subscriber panicked; hand the queue to the next writer.
			s.mu.Lock()
			s.flushing = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.flushing = false
			s.queue = nil
			s.mu.Unlock()
			finished = true
			return
		}
		n := s.queue[0]
		s.queue = s.queue[1:]
		targets := s.targets(n)
		s.mu.Unlock()

		for _, sub := range targets {
			if sub.active.Load() {
				sub.deliver(n.state)
			}
		}
	}
}

// targets lists the subscribers a notification goes to and advances their
// version. Must be called with mu held.
func (s *Store[S]) targets(n notification[S]) []*subscriber[S] {
	if n.target != nil {
		if !slices.Contains(s.subs, n.target) {
			return nil
		}
		return []*subscriber[S]{n.target}
	}

	out := make([]*subscriber[S], 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.since < n.seq {
			sub.since = n.seq
			out = append(out, sub)
		}
	}
	return out
}

// subscribe registers deliver and primes it with the current state.
func (s *Store[S]) subscribe(deliver func(S)) *Subscription {
	sub := &subscriber[S]{deliver: deliver}
	sub.active.Store(true)

	s.mu.Lock()
	sub.since = s.seq
	s.subs = append(s.subs, sub)
	s.queue = append(s.queue, notification[S]{seq: s.seq, state: s.state, target: sub})
	mustDrain := s.claim()
	s.mu.Unlock()

	if mustDrain {
		s.drain()
	}

	return &Subscription{cancel: func() {
		sub.active.Store(false)
		s.mu.Lock()
		s.subs = slices.DeleteFunc(s.subs, func(other *subscriber[S]) bool { return other == sub })
		s.mu.Unlock()
	}}
}

// Select returns the identity observable of the store, compared with the
// equality given to New.
func (s *Store[S]) Select() Observable[S] {
	return Select(s, func(state S) S { return state }, s.equal)
}

// Subscription is a handle to a running observable sequence.
type Subscription struct {
	once   sync.Once
	cancel func()
	closed atomic.Bool
}

// Unsubscribe stops delivery. Notifications already queued for this
// subscription are dropped. Safe to call multiple times.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
}

// Closed reports whether Unsubscribe has been called.
func (s *Subscription) Closed() bool {
	return s.closed.Load()
}

package store

// Observable is a lazy, never-ending sequence of projected states.
// Nothing happens until Subscribe is called; each call starts an
// independent sequence with its own distinct-until-changed memory.
type Observable[T any] struct {
	subscribe func(fn func(T)) *Subscription
}

// Subscribe starts the sequence. fn receives the projection of the current
// state first, then every later projection that differs from the one before.
// Callbacks run on the goroutine that published the state, one at a time,
// in subscription order.
func (o Observable[T]) Subscribe(fn func(T)) *Subscription {
	return o.subscribe(fn)
}

// Select projects the store through selector and suppresses consecutive
// projections for which equal reports true.
func Select[S, T any](s *Store[S], selector func(S) T, equal func(a, b T) bool) Observable[T] {
	return Observable[T]{subscribe: func(fn func(T)) *Subscription {
		var last T
		seen := false
		return s.subscribe(func(state S) {
			v := selector(state)
			if seen && equal(last, v) {
				return
			}
			last, seen = v, true
			fn(v)
		})
	}}
}

// SelectComparable is Select with == as the equality.
func SelectComparable[S any, T comparable](s *Store[S], selector func(S) T) Observable[T] {
	return Select(s, selector, func(a, b T) bool { return a == b })
}

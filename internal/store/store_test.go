package store

import (
	"slices"
	"sync"
	"testing"
)

type counter struct {
	N     int
	Label string
}

func counterEqual(a, b counter) bool { return a == b }

func inc(c counter) counter {
	c.N++
	return c
}

func TestSelectEmitsCurrentStateFirst(t *testing.T) {
	s := New(counter{N: 7}, counterEqual)

	var got []counter
	sub := s.Select().Subscribe(func(c counter) { got = append(got, c) })
	defer sub.Unsubscribe()

	if len(got) != 1 || got[0].N != 7 {
		t.Fatalf("Expected initial value 7, got %v", got)
	}
}

func TestReducePublishesSynchronously(t *testing.T) {
	s := New(counter{}, counterEqual)

	var got []int
	sub := s.Select().Subscribe(func(c counter) { got = append(got, c.N) })
	defer sub.Unsubscribe()

	s.Reduce(inc)
	s.Reduce(inc)

	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("Expected [0 1 2], got %v", got)
	}
	if s.State().N != 2 {
		t.Errorf("State().N = %d, expected 2", s.State().N)
	}
}

func TestDistinctUntilChanged(t *testing.T) {
	s := New(counter{}, counterEqual)

	var labels []string
	sub := SelectComparable(s, func(c counter) string { return c.Label }).
		Subscribe(func(l string) { labels = append(labels, l) })
	defer sub.Unsubscribe()

	setLabel := func(l string) func(counter) counter {
		return func(c counter) counter {
			c.Label = l
			return c
		}
	}

	s.Reduce(inc)           // label unchanged
	s.Reduce(setLabel("a")) // change
	s.Reduce(setLabel("a")) // same
	s.Reduce(inc)           // label unchanged
	s.Reduce(setLabel("b")) // change
	s.Reduce(setLabel("a")) // change back is still a change

	expected := []string{"", "a", "b", "a"}
	if !slices.Equal(labels, expected) {
		t.Errorf("Expected %q, got %q", expected, labels)
	}
}

func TestIdentitySelectSuppressesUnchangedState(t *testing.T) {
	s := New(counter{N: 1}, counterEqual)

	calls := 0
	sub := s.Select().Subscribe(func(counter) { calls++ })
	defer sub.Unsubscribe()

	s.Reduce(func(c counter) counter { return c })

	if calls != 1 {
		t.Errorf("Unchanged state should not be re-emitted, got %d calls", calls)
	}
}

func TestNilEqualEmitsEveryPublish(t *testing.T) {
	s := New(counter{}, nil)

	calls := 0
	sub := s.Select().Subscribe(func(counter) { calls++ })
	defer sub.Unsubscribe()

	s.Reduce(func(c counter) counter { return c })
	s.Reduce(func(c counter) counter { return c })

	if calls != 3 {
		t.Errorf("Expected 3 calls with nil equality, got %d", calls)
	}
}

func TestIndependentSubscriptions(t *testing.T) {
	s := New(counter{}, counterEqual)
	obs := s.Select()

	var a, b []int
	subA := obs.Subscribe(func(c counter) { a = append(a, c.N) })
	defer subA.Unsubscribe()

	s.Reduce(inc)

	subB := obs.Subscribe(func(c counter) { b = append(b, c.N) })
	defer subB.Unsubscribe()

	s.Reduce(inc)
	s.Reduce(inc)

	if !slices.Equal(a, []int{0, 1, 2, 3}) {
		t.Errorf("First subscription got %v", a)
	}
	// Second subscription starts from the state current at subscribe time.
	if !slices.Equal(b, []int{1, 2, 3}) {
		t.Errorf("Second subscription got %v", b)
	}
	if !slices.Equal(a[1:], b) {
		t.Errorf("Both subscriptions should observe identical later changes: %v vs %v", a[1:], b)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	s := New(counter{}, counterEqual)

	calls := 0
	sub := s.Select().Subscribe(func(counter) { calls++ })
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	s.Reduce(inc)

	if calls != 1 {
		t.Errorf("Expected only the initial call, got %d", calls)
	}
	if !sub.Closed() {
		t.Error("Closed() should be true after Unsubscribe")
	}
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d, expected 0", s.Subscribers())
	}
}

func TestUnsubscribeFromCallbackDropsQueued(t *testing.T) {
	s := New(counter{}, counterEqual)

	var second []int
	var subB *Subscription

	subA := s.Select().Subscribe(func(c counter) {
		if c.N == 1 && subB != nil {
			subB.Unsubscribe()
		}
	})
	defer subA.Unsubscribe()

	subB = s.Select().Subscribe(func(c counter) { second = append(second, c.N) })

	s.Reduce(inc)

	for _, n := range second {
		if n >= 1 {
			t.Errorf("Unsubscribed callback still received %d", n)
		}
	}
}

func TestReentrantReducePreservesOrder(t *testing.T) {
	s := New(counter{}, counterEqual)

	var first, second []int
	subA := s.Select().Subscribe(func(c counter) {
		first = append(first, c.N)
		if c.N == 1 {
			s.Reduce(inc) // write from inside a notification
		}
	})
	defer subA.Unsubscribe()

	subB := s.Select().Subscribe(func(c counter) { second = append(second, c.N) })
	defer subB.Unsubscribe()

	s.Reduce(inc)

	if !slices.Equal(first, []int{0, 1, 2}) {
		t.Errorf("First subscriber got %v", first)
	}
	if !slices.Equal(second, []int{0, 1, 2}) {
		t.Errorf("Second subscriber got %v, expected in-order delivery", second)
	}
	if s.State().N != 2 {
		t.Errorf("State().N = %d, expected 2", s.State().N)
	}
}

func TestReducerPanicPropagates(t *testing.T) {
	s := New(counter{N: 3}, counterEqual)

	calls := 0
	sub := s.Select().Subscribe(func(counter) { calls++ })
	defer sub.Unsubscribe()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected the reducer panic to reach the caller")
			}
		}()
		s.Reduce(func(counter) counter { panic("boom") })
	}()

	if s.State().N != 3 {
		t.Errorf("State should be unchanged after a failed reduce, got %d", s.State().N)
	}

	// The store must stay usable.
	s.Reduce(inc)
	if s.State().N != 4 || calls != 2 {
		t.Errorf("Store unusable after panic: state %d, calls %d", s.State().N, calls)
	}
}

func TestSubscriberPanicDoesNotWedgeStore(t *testing.T) {
	s := New(counter{}, counterEqual)

	var got []int
	sub := s.Select().Subscribe(func(c counter) {
		if c.N == 1 {
			panic("render failed")
		}
		got = append(got, c.N)
	})
	defer sub.Unsubscribe()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected the subscriber panic to reach the caller")
			}
		}()
		s.Reduce(inc)
	}()

	s.Reduce(inc)

	if !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Expected delivery to resume after panic, got %v", got)
	}
}

func TestSequentialReducersCompose(t *testing.T) {
	double := func(c counter) counter {
		c.N *= 2
		return c
	}

	a := New(counter{N: 5}, counterEqual)
	a.Reduce(inc)
	a.Reduce(double)

	b := New(counter{N: 5}, counterEqual)
	b.Reduce(func(c counter) counter { return double(inc(c)) })

	if a.State() != b.State() {
		t.Errorf("Two reduces %v should equal the composed reducer %v", a.State(), b.State())
	}
}

func TestConcurrentReduceIsSerialized(t *testing.T) {
	s := New(counter{}, counterEqual)

	var mu sync.Mutex
	var seen []int
	sub := s.Select().Subscribe(func(c counter) {
		mu.Lock()
		seen = append(seen, c.N)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				s.Reduce(inc)
			}
		}()
	}
	wg.Wait()

	if s.State().N != writers*perWriter {
		t.Fatalf("Lost updates: N = %d, expected %d", s.State().N, writers*perWriter)
	}

	mu.Lock()
	defer mu.Unlock()
	if !slices.IsSorted(seen) {
		t.Error("Notifications should arrive in the order states were published")
	}
	if seen[len(seen)-1] != writers*perWriter {
		t.Errorf("Last notification = %d, expected %d", seen[len(seen)-1], writers*perWriter)
	}
}

func TestReduceDuringDeliveryReturnsAfterCommit(t *testing.T) {
	s := New(counter{}, counterEqual)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []int
	sub := s.Select().Subscribe(func(c counter) {
		if c.N == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, c.N)
		mu.Unlock()
	})
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Reduce(inc) // delivers 1 and blocks in the subscriber
	}()
	<-entered

	// Another goroutine is delivering, so this only commits
	s.Reduce(inc)
	if s.State().N != 2 {
		t.Fatalf("State().N = %d, expected 2 right after Reduce", s.State().N)
	}
	mu.Lock()
	early := slices.Clone(seen)
	mu.Unlock()
	if !slices.Equal(early, []int{0}) {
		t.Errorf("Expected only the primed value before release, got %v", early)
	}

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(seen, []int{0, 1, 2}) {
		t.Errorf("Expected [0 1 2] once the delivering call returns, got %v", seen)
	}
}

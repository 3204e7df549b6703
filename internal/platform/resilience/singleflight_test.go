package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	var g SingleFlight

	var calls atomic.Int64
	release := make(chan struct{})
	leaderIn := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]any, 10)
	shared := make([]bool, 10)

	wg.Add(1)
	go func() {
		defer wg.Done()
		val, err, _ := g.Do("key", func() (any, error) {
			calls.Add(1)
			close(leaderIn)
			<-release
			return 42, nil
		})
		if err != nil {
			t.Errorf("leader err: %v", err)
		}
		results[0] = val
	}()

	<-leaderIn
	for i := 1; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			val, err, wasShared := g.Do("key", func() (any, error) {
				calls.Add(1)
				return 42, nil
			})
			if err != nil {
				t.Errorf("follower err: %v", err)
			}
			results[i] = val
			shared[i] = wasShared
		}(i)
	}

	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fn ran %d times, want 1", got)
	}
	for i, val := range results {
		if val != 42 {
			t.Fatalf("results[%d] = %v, want 42", i, val)
		}
	}
	for i := 1; i < 10; i++ {
		if !shared[i] {
			t.Fatalf("follower %d did not report a shared result", i)
		}
	}
}

func TestSingleFlight_ErrorsShared(t *testing.T) {
	var g SingleFlight
	want := errors.New("upstream down")

	_, err, _ := g.Do("key", func() (any, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestSingleFlight_KeyReusableAfterCompletion(t *testing.T) {
	var g SingleFlight

	calls := 0
	for i := 0; i < 3; i++ {
		val, err, shared := g.Do("key", func() (any, error) {
			calls++
			return calls, nil
		})
		if err != nil {
			t.Fatalf("Do: %v", err)
		}
		if shared {
			t.Fatalf("sequential call %d reported a shared result", i)
		}
		if val != calls {
			t.Fatalf("val = %v, want %d", val, calls)
		}
	}
	if calls != 3 {
		t.Fatalf("fn ran %d times, want 3", calls)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var g SingleFlight

	a, _, _ := g.Do("a", func() (any, error) { return "a", nil })
	b, _, _ := g.Do("b", func() (any, error) { return "b", nil })
	if a != "a" || b != "b" {
		t.Fatalf("got %v/%v, want a/b", a, b)
	}
}

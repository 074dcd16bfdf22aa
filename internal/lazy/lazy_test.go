package lazy

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestComputedOnce(t *testing.T) {
	var calls int32
	l := Of(func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	})

	if l.Initialized() {
		t.Error("expected holder to start uninitialized")
	}

	for i := 0; i < 3; i++ {
		v, err := l.Get()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	}

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("supplier ran %d times, expected 1", got)
	}
	if !l.Initialized() {
		t.Error("expected holder to be initialized after Get")
	}
}

func TestErrorCachedNotRetried(t *testing.T) {
	var calls int32
	boom := errors.New("boom")
	l := Of(func() (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", boom
	})

	for i := 0; i < 2; i++ {
		if _, err := l.Get(); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("failed supplier ran %d times, expected 1 (no retry)", got)
	}
}

func TestConcurrentGet(t *testing.T) {
	var calls int32
	l := Of(func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 7, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get()
			if err != nil || v != 7 {
				t.Errorf("got (%d, %v), expected (7, nil)", v, err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("supplier ran %d times under contention, expected 1", got)
	}
}

package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGroup_DoCollapsesConcurrentCalls(t *testing.T) {
	var g Group[int]
	var counter atomic.Int32

	const workers = 20
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err, _ := g.Do("league-1:week-3", func() (int, error) {
				counter.Add(1)
				time.Sleep(20 * time.Millisecond)
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("unexpected result: v=%d err=%v", v, err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := counter.Load(); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if got := g.InFlight(); got != 0 {
		t.Fatalf("expected no in-flight keys, got %d", got)
	}
}

func TestGroup_DoRunsAgainAfterCompletion(t *testing.T) {
	var g SingleFlight
	calls := 0
	for i := 0; i < 2; i++ {
		_, _, shared := g.Do("k", func() (any, error) {
			calls++
			return nil, nil
		})
		if shared {
			t.Fatalf("sequential call should not be shared")
		}
	}
	if calls != 2 {
		t.Fatalf("expected two executions, got %d", calls)
	}
}

func TestGroup_DoRecoversPanic(t *testing.T) {
	var g Group[string]
	_, err, _ := g.Do("boom", func() (string, error) {
		panic("kaboom")
	})
	if err == nil {
		t.Fatalf("expected error from panicking call")
	}

	v, err, _ := g.Do("boom", func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("expected key to be reusable after panic, got v=%q err=%v", v, err)
	}
}

func TestGroup_DoPropagatesError(t *testing.T) {
	var g Group[int]
	want := errors.New("store down")
	_, err, _ := g.Do("k", func() (int, error) { return 0, want })
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestKeyedMutex_RunsEveryCallerOneAtATime(t *testing.T) {
	var k KeyedMutex
	var running, maxRunning, calls atomic.Int32

	const workers = 10
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(context.Background(), "league-1:3")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			defer unlock()

			now := running.Add(1)
			for {
				prev := maxRunning.Load()
				if now <= prev || maxRunning.CompareAndSwap(prev, now) {
					break
				}
			}
			calls.Add(1)
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	if got := calls.Load(); got != workers {
		t.Fatalf("expected %d executions, got %d", workers, got)
	}
	if got := maxRunning.Load(); got != 1 {
		t.Fatalf("expected one holder at a time, saw %d", got)
	}
	if got := k.Keys(); got != 0 {
		t.Fatalf("expected no tracked keys, got %d", got)
	}
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	var k KeyedMutex
	unlockA, err := k.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := k.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("lock b: %v", err)
	}
	unlockB()
	unlockB()
}

func TestKeyedMutex_LockHonorsContext(t *testing.T) {
	var k KeyedMutex
	unlock, err := k.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := k.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	if got := k.Keys(); got != 0 {
		t.Fatalf("expected no tracked keys, got %d", got)
	}
}

package resilience

import (
	"fmt"
	"sync"
)

// Group collapses concurrent calls that share a key into one execution.
// Callers that join an in-flight call receive its result and shared=true.
type Group[T any] struct {
	mu    sync.Mutex
	calls map[string]*flight[T]
}

// SingleFlight is the untyped group used by caches.
type SingleFlight = Group[any]

type flight[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func (g *Group[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*flight[T])
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.val, c.err, true
	}

	c := &flight[T]{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	g.run(key, c, fn)
	return c.val, c.err, false
}

func (g *Group[T]) run(key string, c *flight[T], fn func() (T, error)) {
	defer func() {
		if rec := recover(); rec != nil {
			c.err = fmt.Errorf("singleflight %q panicked: %v", key, rec)
		}
		g.mu.Lock()
		delete(g.calls, key)
		g.mu.Unlock()
		close(c.done)
	}()

	c.val, c.err = fn()
}

// InFlight reports how many keys are currently executing.
func (g *Group[T]) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeHandler runs an optional startFn on Start; its Action does nothing
// and it never self-registers a timer.
type fakeHandler struct {
	startFn func(l *Loop)
}

func (f *fakeHandler) Start(l *Loop) {
	if f.startFn != nil {
		f.startFn(l)
	}
}
func (f *fakeHandler) Action() {}

func TestPostRunsOnLoopGoroutine(t *testing.T) {
	l := New()
	l.Register(&fakeHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int)
	go func() { done <- l.Run(ctx) }()

	var ran bool
	var wg sync.WaitGroup
	wg.Add(1)
	l.Post(func() {
		ran = true
		wg.Done()
	})
	wg.Wait()
	require.True(t, ran)

	cancel()
	<-done
}

func TestNoInterleavingOfHandlers(t *testing.T) {
	// Scenario F: a slow handler and a concurrent post must not interleave —
	// both run on the same loop goroutine so ordering is by post order.
	l := New()
	l.Register(&fakeHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer cancel()

	var mu sync.Mutex
	var events []string

	slowDone := make(chan struct{})
	l.Post(func() {
		mu.Lock()
		events = append(events, "slow-start")
		mu.Unlock()
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		events = append(events, "slow-end")
		mu.Unlock()
		close(slowDone)
	})

	time.Sleep(5 * time.Millisecond) // ensure slow handler has started
	webDone := make(chan struct{})
	l.Post(func() {
		mu.Lock()
		events = append(events, "web")
		mu.Unlock()
		close(webDone)
	})

	<-slowDone
	<-webDone

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"slow-start", "slow-end", "web"}, events)
}

func TestReadyCoalescesDuplicateCalls(t *testing.T) {
	l := New()
	l.Register(&fakeHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	defer cancel()

	var mu sync.Mutex
	runs := 0
	r := NewReady(l, func() {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.SetReady()
		}()
	}
	wg.Wait()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, runs, 1)
	require.LessOrEqual(t, runs, 10)
}

package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_Do(t *testing.T) {
	var g SingleFlight
	var counter int32

	const workers = 20
	release := make(chan struct{})
	entered := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	// The leader blocks until every follower has had time to join the flight.
	go func() {
		defer wg.Done()
		_, err, _ := g.Do("codechef:profile:errichto", func() (any, error) {
			atomic.AddInt32(&counter, 1)
			close(entered)
			<-release
			return "ok", nil
		})
		if err != nil {
			t.Errorf("singleflight call failed: %v", err)
		}
	}()
	<-entered

	for i := 1; i < workers; i++ {
		go func() {
			defer wg.Done()
			v, err, shared := g.Do("codechef:profile:errichto", func() (any, error) {
				atomic.AddInt32(&counter, 1)
				return "late", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if shared && v != "ok" {
				t.Errorf("shared caller got %v", v)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&counter); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
}

func TestSingleFlight_DoContextStopsWaiting(t *testing.T) {
	var g SingleFlight
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{})
	go func() {
		_, _, _ = g.Do("leetcode:profile:neal", func() (any, error) {
			close(started)
			<-release
			return "ok", nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err, _ := g.DoContext(ctx, "leetcode:profile:neal", func() (any, error) {
		t.Errorf("follower must join the running call")
		return nil, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestSingleFlight_DoContextReturnsValue(t *testing.T) {
	var g SingleFlight
	v, err, _ := g.DoContext(context.Background(), "k", func() (any, error) { return 42, nil })
	if err != nil || v != 42 {
		t.Fatalf("unexpected result v=%v err=%v", v, err)
	}
}

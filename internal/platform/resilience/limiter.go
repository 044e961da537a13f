package resilience

import (
	"context"
)

// Limiter caps the number of in-flight calls against one upstream source.
// A nil Limiter admits everything.
type Limiter struct {
	slots chan struct{}
}

func NewLimiter(size int) *Limiter {
	if size < 1 {
		size = 1
	}
	return &Limiter{slots: make(chan struct{}, size)}
}

// Acquire blocks until a slot is free or ctx is done. The returned release
// func must be called exactly once.
func (l *Limiter) Acquire(ctx context.Context) (func(), error) {
	if l == nil {
		return func() {}, nil
	}

	select {
	case l.slots <- struct{}{}:
		return func() { <-l.slots }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}

func (l *Limiter) Size() int {
	if l == nil {
		return 0
	}
	return cap(l.slots)
}

func (l *Limiter) InFlight() int {
	if l == nil {
		return 0
	}
	return len(l.slots)
}

package search

import (
	"math/rand"
	"sync"
	"time"
)

// Throttle spaces outgoing search requests by a randomized interval, so
// request timing does not look machine-regular to the search engine.
type Throttle struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	minDelay      time.Duration
	maxDelay      time.Duration
}

func NewThrottle(minDelay, maxDelay time.Duration) *Throttle {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Throttle{minDelay: minDelay, maxDelay: maxDelay}
}

func (t *Throttle) interval() time.Duration {
	if t.maxDelay == t.minDelay {
		return t.minDelay
	}
	return t.minDelay + time.Duration(rand.Int63n(int64(t.maxDelay-t.minDelay)))
}

// WaitTurn blocks until this request's scheduled slot. The first request
// goes through immediately.
func (t *Throttle) WaitTurn() {
	t.mu.Lock()
	now := time.Now()
	scheduled := now
	if t.nextAllowedAt.After(now) {
		scheduled = t.nextAllowedAt
	}
	t.nextAllowedAt = scheduled.Add(t.interval())
	t.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}

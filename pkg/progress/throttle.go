package progress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const DefaultInterval = 8 * time.Second

// Throttle allows one emission per interval no matter how often it is asked.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	now     func() time.Time
}

func NewThrottle(interval time.Duration) *Throttle {
	return NewThrottleWithClock(interval, time.Now)
}

func NewThrottleWithClock(interval time.Duration, now func() time.Time) *Throttle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		now:     now,
	}
}

func (t *Throttle) ShouldEmit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limiter.AllowN(t.now(), 1)
}

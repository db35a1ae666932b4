package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HostLimiter spaces requests to the same host at least interval apart.
// A nil limiter or non-positive interval disables the delay entirely,
// preserving the default full-speed behavior.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	interval time.Duration
	log      *logrus.Entry
}

// NewHostLimiter creates a limiter enforcing interval between requests per host.
func NewHostLimiter(interval time.Duration, log *logrus.Entry) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
		log:      log,
	}
}

// Wait blocks until host's next request slot, or until ctx is cancelled.
func (hl *HostLimiter) Wait(ctx context.Context, host string) error {
	if hl == nil || hl.interval <= 0 {
		return nil
	}

	hl.mu.Lock()
	lim, ok := hl.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(hl.interval), 1)
		hl.limiters[host] = lim
		hl.log.WithFields(logrus.Fields{"host": host, "interval": hl.interval}).Debug("Created host rate limiter")
	}
	hl.mu.Unlock()

	return lim.Wait(ctx)
}

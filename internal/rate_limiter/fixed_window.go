package ratelimiter

import (
	"sync"
	"time"

	"github.com/raven-med/radtag/internal/config"
	"go.uber.org/zap"
)

// FixedWindowRateLimiter counts requests per client key inside a fixed time
// window. Counters reset when the window elapses.
type FixedWindowRateLimiter struct {
	sync.RWMutex
	clients map[string]int
	limit   int
	window  time.Duration
	logger  *zap.SugaredLogger

	Enabled bool
}

func NewFixedWindowLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]int),
		limit:   cfg.RequestsPerTimeFrame,
		window:  cfg.TimeFrame,
		logger:  logger,
		Enabled: cfg.Enabled,
	}
}

// Allow reports whether the client may proceed and, when denied, how long to
// wait before the window resets.
func (rl *FixedWindowRateLimiter) Allow(clientKey string) (bool, time.Duration) {
	rl.RLock()
	count, exists := rl.clients[clientKey]
	rl.RUnlock()

	if !exists || count < rl.limit {
		rl.Lock()
		if !exists {
			go rl.resetCount(clientKey)
		}
		rl.clients[clientKey]++
		rl.Unlock()

		return true, 0
	}

	return false, rl.window
}

func (rl *FixedWindowRateLimiter) resetCount(clientKey string) {
	time.Sleep(rl.window)
	rl.Lock()
	delete(rl.clients, clientKey)
	rl.Unlock()
}

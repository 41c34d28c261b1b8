package ratelimiter

import (
	"github.com/raven-med/radtag/internal/config"
	"github.com/raven-med/radtag/internal/util"
	"go.uber.org/zap"
)

func NewRateLimiter(cfg config.RateLimiterConfig, logger *zap.SugaredLogger) *FixedWindowRateLimiter {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("")
	}

	return NewFixedWindowLimiter(cfg, logger)
}

package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/raven-med/radtag/internal/util"
)

func (m Middleware) RateLimiterMiddleware(ctx *gin.Context) {
	if !m.rateLimiter.Enabled {
		ctx.Next()
		return
	}

	allow, retryAfter := m.rateLimiter.Allow(ctx.ClientIP())
	if !allow {
		ctx.Header("Retry-After", fmt.Sprintf("%.0f", retryAfter.Seconds()))
		util.ResponseFailed(ctx, 429, "Too many requests", util.GenerateErrorMessages(fmt.Errorf("rate limit exceeded, retry after %v", retryAfter), "rateLimit"), nil)
		ctx.Abort()
		return
	}

	ctx.Next()
}

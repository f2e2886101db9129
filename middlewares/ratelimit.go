package middlewares

import (
	"math"
	"strconv"
	"time"

	"littlelemon/pkg/logging"
	"littlelemon/pkg/ratelimit"
	"littlelemon/pkg/resp"

	"github.com/gin-gonic/gin"
)

// RateLimitOptions holds the per-window quotas for each client class.
type RateLimitOptions struct {
	Anon   int
	User   int
	Window time.Duration
}

// RateLimit must run after Authenticate so users are keyed by id, not address.
// It never calls c.Next, so it can also serve as an Authenticate onReject hook.
// A failing store lets the request through.
func RateLimit(l ratelimit.Limiter, opts RateLimitOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		class, key, limit := "anon", "anon:"+c.ClientIP(), opts.Anon
		if p := CurrentPrincipal(c); p.Authenticated() {
			class, key, limit = "user", "user:"+strconv.FormatUint(uint64(p.UserID), 10), opts.User
		}
		if limit <= 0 {
			return
		}

		ok, retry, err := l.Allow(c.Request.Context(), key, limit, opts.Window)
		if err != nil {
			logging.From(c).Warn("rate limiter unavailable", "error", err)
			return
		}
		if !ok {
			rateLimited.WithLabelValues(class).Inc()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
			resp.AbortTooManyRequests(c, "request was throttled")
		}
	}
}

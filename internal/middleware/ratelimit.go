package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Juenzo/CloudComputing-Project/internal/response"
)

// RateLimiter is a fixed-window per-client limiter backed by redis, so the
// limit holds across server replicas.
type RateLimiter struct {
	rdb    *redis.Client
	rate   int
	window time.Duration
	key    func(c *gin.Context) string
	log    zerolog.Logger
}

// NewRateLimiter allows rate requests per window for each key.
func NewRateLimiter(rdb *redis.Client, rate int, window time.Duration, key func(c *gin.Context) string, log zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		rate:   rate,
		window: window,
		key:    key,
		log:    log.With().Str("component", "ratelimit").Logger(),
	}
}

// Middleware rejects requests over the limit with 429. When redis is
// unavailable requests are let through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rate <= 0 {
			c.Next()
			return
		}

		key := rl.key(c)
		pipe := rl.rdb.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.ExpireNX(c.Request.Context(), key, rl.window)
		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			rl.log.Warn().Err(err).Str("key", key).Msg("Rate limit check failed, allowing request")
			c.Next()
			return
		}

		if incr.Val() > int64(rl.rate) {
			c.Header("Retry-After", rl.retryAfter(c, key))
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) retryAfter(c *gin.Context, key string) string {
	ttl, err := rl.rdb.TTL(c.Request.Context(), key).Result()
	if err != nil || ttl <= 0 {
		ttl = rl.window
	}
	return formatSeconds(ttl)
}

func formatSeconds(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

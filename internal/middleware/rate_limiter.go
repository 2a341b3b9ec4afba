package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"snapbook/internal/pkg/response"
)

// NewRateLimitStore keeps counters in Redis, or in process memory when no
// client is given.
func NewRateLimitStore(rdb *redis.Client, routeID string) (limiter.Store, error) {
	prefix := "snapbook:rate:" + routeID
	if rdb == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: time.Minute,
		}), nil
	}
	store, err := redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit store for %s: %w", routeID, err)
	}
	return store, nil
}

// ParseRate accepts "<limit>-<n><unit>" such as "10-1m", "60-30s", "5-1h".
func ParseRate(raw string) (limiter.Rate, error) {
	limitPart, periodPart, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %q", raw)
	}
	limit, err := strconv.ParseInt(limitPart, 10, 64)
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid rate limit: %q", limitPart)
	}
	if len(periodPart) < 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate period: %q", periodPart)
	}

	n, err := strconv.Atoi(periodPart[:len(periodPart)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid rate period: %q", periodPart)
	}
	var unit time.Duration
	switch periodPart[len(periodPart)-1] {
	case 's':
		unit = time.Second
	case 'm':
		unit = time.Minute
	case 'h':
		unit = time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported rate period: %q", periodPart)
	}
	return limiter.Rate{Period: time.Duration(n) * unit, Limit: limit}, nil
}

// RateLimit limits requests per client IP with the given rate.
func RateLimit(store limiter.Store, rate limiter.Rate) gin.HandlerFunc {
	return ginmiddleware.NewMiddleware(
		limiter.New(store, rate),
		ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
			return c.ClientIP()
		}),
		ginmiddleware.WithLimitReachedHandler(func(c *gin.Context) {
			response.Abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many requests, try again later")
		}),
		ginmiddleware.WithErrorHandler(func(c *gin.Context, err error) {
			_ = c.Error(err)
			response.Abort(c, http.StatusInternalServerError, response.CodeInternalError, "internal server error")
		}),
	)
}

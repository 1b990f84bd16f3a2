package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginlimiter "github.com/ulule/limiter/v3/drivers/middleware/gin"
	memory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits each caller to perMinute requests. Authenticated callers are keyed
// by user ID, anonymous ones by IP. A nil client keeps counters in process memory.
func RateLimiter(perMinute int64, client *redis.Client) (gin.HandlerFunc, error) {
	var store limiter.Store
	if client != nil {
		s, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
			Prefix:   "planner:ratelimit",
			MaxRetry: 3,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis limiter store: %w", err)
		}
		store = s
	} else {
		store = memory.NewStore()
	}

	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  perMinute,
	}
	instance := limiter.New(store, rate)

	return ginlimiter.NewMiddleware(instance, ginlimiter.WithKeyGetter(rateKey)), nil
}

func rateKey(c *gin.Context) string {
	if id, ok := GetUserID(c); ok {
		return "user:" + id.String()
	}
	return "ip:" + GetIPFromContext(c)
}

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ravigill3969/textgen-quota/utils"
)

const rateLimitTimeout = time.Second

type RateLimiter struct {
	client      *redis.Client
	maxRequests int64
	window      time.Duration
}

func NewRateLimiter(client *redis.Client, maxRequests int64, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, maxRequests: maxRequests, window: window}
}

// GlobalRateLimiter caps requests per client IP in a fixed window. When Redis
// is unreachable the request is let through.
func (rl *RateLimiter) GlobalRateLimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := fmt.Sprintf("rate_limit:site:%s", getIP(r))

		ctx, cancel := context.WithTimeout(r.Context(), rateLimitTimeout)
		count, ttl, err := rl.hit(ctx, key)
		cancel()

		if err != nil {
			slog.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		remaining := rl.maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rl.maxRequests, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > rl.maxRequests {
			if ttl > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			}
			utils.RespondError(w, http.StatusTooManyRequests, "Too many requests, please slow down.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hit increments the window counter and starts the window on first use.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var pttl *redis.DurationCmd

	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	ttl := pttl.Val()
	if ttl < 0 {
		if err := rl.client.PExpire(ctx, key, rl.window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = rl.window
	}

	return incr.Val(), ttl, nil
}

func getIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

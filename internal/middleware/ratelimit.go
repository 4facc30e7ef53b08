package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/logger"
)

// verdict is the outcome of taking one token.
type verdict struct {
	allowed   bool
	remaining int
	retry     time.Duration
}

type bucket interface {
	take(ctx context.Context, key string) (verdict, error)
}

// Tokens are kept in thousandths so the script only deals in integers.
// Refill is continuous: RefillTokens per RefillInterval, capped at Capacity.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[2]) * 1000
local now = tonumber(ARGV[1])
local per_ms = tonumber(ARGV[3]) * 1000 / tonumber(ARGV[4])

local milli = tonumber(redis.call('HGET', KEYS[1], 'milli'))
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp'))
if milli == nil or stamp == nil then
	milli, stamp = capacity, now
end
if now > stamp then
	milli = math.min(capacity, milli + math.floor((now - stamp) * per_ms))
	stamp = now
end

local allowed, retry = 0, 0
if milli >= 1000 then
	allowed = 1
	milli = milli - 1000
else
	retry = math.ceil((1000 - milli) / per_ms)
end
redis.call('HSET', KEYS[1], 'milli', milli, 'stamp', stamp)
redis.call('EXPIRE', KEYS[1], ARGV[5])
return {allowed, math.floor(milli / 1000), retry}
`)

type redisBucket struct {
	rdb *redis.Client
	cfg config.RateLimitConfig
}

func (b redisBucket) take(ctx context.Context, key string) (verdict, error) {
	res, err := takeScript.Run(ctx, b.rdb, []string{key},
		time.Now().UnixMilli(),
		b.cfg.Capacity,
		b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(),
		int64(b.cfg.TTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return verdict{
		allowed:   res[0] == 1,
		remaining: int(res[1]),
		retry:     time.Duration(res[2]) * time.Millisecond,
	}, nil
}

// localBucket keeps one x/time/rate limiter per key in process memory.
type localBucket struct {
	mu    sync.Mutex
	byKey map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func newLocalBucket(cfg config.RateLimitConfig) *localBucket {
	return &localBucket{
		byKey: make(map[string]*rate.Limiter),
		limit: rate.Every(cfg.RefillInterval / time.Duration(cfg.RefillTokens)),
		burst: cfg.Capacity,
	}
}

func (b *localBucket) take(_ context.Context, key string) (verdict, error) {
	b.mu.Lock()
	lim, ok := b.byKey[key]
	if !ok {
		lim = rate.NewLimiter(b.limit, b.burst)
		b.byKey[key] = lim
	}
	b.mu.Unlock()

	now := time.Now()
	r := lim.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		return verdict{retry: wait}, nil
	}
	return verdict{allowed: true, remaining: int(lim.TokensAt(now))}, nil
}

// NewTokenBucket throttles login and register attempts per rateKey.  Redis
// holds the buckets when available; on a nil client or a Redis error the
// in-process bucket answers instead.  Throttled requests get 429 with
// Retry-After and a warning notice.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, l logger.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	local := newLocalBucket(cfg)
	var shared bucket
	if rdb != nil {
		shared = redisBucket{rdb: rdb, cfg: cfg}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := rateKey(cfg, c)

			var (
				v   verdict
				err error
			)
			if shared != nil {
				if v, err = shared.take(ctx, key); err != nil {
					l.Warn("rate limit: redis bucket failed", "key", key, "error", err)
				}
			}
			if shared == nil || err != nil {
				v, _ = local.take(ctx, key)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
			if v.allowed {
				return next(c)
			}

			secs := int(math.Max(1, math.Ceil(v.retry.Seconds())))
			h.Set("Retry-After", strconv.Itoa(secs))
			if cfg.Debug {
				l.Debug("rate limit: throttled", "key", key, "retry_s", secs)
			}
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"notice": echo.Map{
					"kind":    "warning",
					"message": fmt.Sprintf("Too many attempts. Try again in %ds.", secs),
				},
			})
		}
	}
}

// rateKey scopes a bucket.  Strategies: "ip", "route", "ip_route"
// (default).  Login happens before there is a user, so no user strategy.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	route := c.Request().Method + " " + c.Path()

	key := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		key = append(key, ip)
	case "route":
		key = append(key, route)
	default:
		key = append(key, ip, route)
	}
	return strings.Join(key, ":")
}

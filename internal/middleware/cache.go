package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/logger"
)

// Headers never replayed from a cached entry.
var uncachedHeaders = []string{"Content-Length", "Set-Cookie", "X-Cache", "X-Request-Id"}

// cachedResponse is what a cache entry holds.
type cachedResponse struct {
	Status int         `json:"s"`
	Header http.Header `json:"h"`
	Body   []byte      `json:"b"`
}

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	return json.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
		return 0, nil, nil, false
	}
	if cr.Header == nil {
		cr.Header = http.Header{}
	}
	return cr.Status, cr.Header, cr.Body, true
}

// teeWriter copies what the handler writes, up to max bytes, and notes
// when the body grew past it.
type teeWriter struct {
	http.ResponseWriter
	status    int
	body      bytes.Buffer
	max       int
	truncated bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.truncated {
		if w.max > 0 && w.body.Len()+len(b) > w.max {
			w.truncated = true
		} else {
			w.body.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey hashes the parts of the request named by cfg.KeyStrategy:
// "route", "route_query", "user_route" or "user_route_query" (default).
// Path parameter values always count.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strategy == "" {
		strategy = "user_route_query"
	}

	h := sha1.New()
	if strings.HasPrefix(strategy, "user_") {
		h.Write([]byte("u=" + currentUserID(c) + "\n"))
	}
	h.Write([]byte("r=" + c.Path() + "\n"))
	h.Write([]byte("p=" + strings.Join(c.ParamValues(), "/") + "\n"))
	if strings.HasSuffix(strategy, "_query") {
		h.Write([]byte("q=" + c.Request().URL.RawQuery))
	}
	return cfg.Prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

func replay(c echo.Context, bs []byte) bool {
	status, header, body, ok := decodePayload(bs)
	if !ok {
		return false
	}
	for _, k := range uncachedHeaders {
		header.Del(k)
	}
	out := c.Response().Header()
	for k, vals := range header {
		out[k] = vals
	}
	out.Set("X-Cache", "HIT")
	c.Response().WriteHeader(status)
	_, _ = c.Response().Write(body)
	return true
}

// NewRedisCache replays 200 responses for cfg.TTL.  Only cfg.Methods are
// cached.  Without a Redis client it passes requests through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, l logger.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			bs, err := rdb.Get(ctx, key).Bytes()
			switch {
			case err == nil:
				if replay(c, bs) {
					return nil
				}
				l.Warn("cache: undecodable entry", "key", key)
			case !errors.Is(err, redis.Nil):
				l.Warn("cache: lookup failed", "key", key, "error", err)
			}

			tee := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: cfg.MaxBodyBytes}
			c.Response().Writer = tee
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if tee.status != http.StatusOK || tee.truncated {
				return nil
			}

			header := c.Response().Header().Clone()
			for _, k := range uncachedHeaders {
				header.Del(k)
			}
			payload, err := encodePayload(tee.status, header, tee.body.Bytes())
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				l.Warn("cache: store failed", "key", key, "error", err)
			}
			return nil
		}
	}
}

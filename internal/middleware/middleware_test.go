package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/eventx-studio/internal/backend"
	"github.com/iliyamo/eventx-studio/internal/config"
	"github.com/iliyamo/eventx-studio/internal/logger"
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/repository"
	"github.com/iliyamo/eventx-studio/internal/session"
)

var cookieCfg = CookieConfig{Name: "eventx_session", Secret: "test-secret", TTL: time.Hour}

type unavailableRepo struct{ repository.SessionRepository }

func (unavailableRepo) Load(context.Context, string) (model.SessionRecord, error) {
	return model.SessionRecord{}, repository.ErrUnavailable
}

func newApp(t *testing.T, records repository.SessionRepository) *echo.Echo {
	t.Helper()
	api, err := backend.New(backend.Config{BaseURL: "http://backend.test"})
	require.NoError(t, err)
	m := session.NewManager(records, nil, api, validator.New(), time.Hour, logger.NewNop())

	e := echo.New()
	e.Use(Session(cookieCfg, m, logger.NewNop()))
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/admin/dashboard", ok, RequireRole(model.RoleAdmin))
	e.POST("/admin/add-event/create", ok, RequireRole(model.RoleAdmin))
	e.GET("/user/dashboard", ok, RequireRole(model.RoleUser))
	e.GET("/notifications", ok, RequireSession())
	return e
}

// signedIn persists a record for role and returns a request cookie for it.
func signedIn(t *testing.T, records repository.SessionRepository, role model.Role) *http.Cookie {
	t.Helper()
	require.NoError(t, records.Save(context.Background(), "sid-"+string(role), model.SessionRecord{
		Token:    "tok",
		Identity: model.Identity{ID: "id-" + string(role), Role: role},
	}, time.Hour))

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, IssueCookie(c, cookieCfg, "sid-"+string(role)))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func serve(e *echo.Echo, method, path string, ck *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGuard_UnauthenticatedRedirectsToLogin(t *testing.T) {
	e := newApp(t, repository.NewMemorySessionRepository())
	for _, p := range []string{"/admin/dashboard", "/user/dashboard", "/notifications"} {
		rec := serve(e, http.MethodGet, p, nil)
		assert.Equal(t, http.StatusFound, rec.Code, p)
		assert.Equal(t, "/login", rec.Header().Get("Location"), p)
	}
}

func TestGuard_UserOnAdminRouteRedirectsToRoot(t *testing.T) {
	records := repository.NewMemorySessionRepository()
	e := newApp(t, records)
	ck := signedIn(t, records, model.RoleUser)

	rec := serve(e, http.MethodGet, "/admin/dashboard", ck)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = serve(e, http.MethodGet, "/user/dashboard", ck)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_SharedRouteAdmitsAnyRole(t *testing.T) {
	records := repository.NewMemorySessionRepository()
	e := newApp(t, records)
	for _, role := range []model.Role{model.RoleAdmin, model.RoleUser} {
		rec := serve(e, http.MethodGet, "/notifications", signedIn(t, records, role))
		assert.Equal(t, http.StatusOK, rec.Code, role)
	}
}

func TestGuard_NonNavigationGetsJSON(t *testing.T) {
	records := repository.NewMemorySessionRepository()
	e := newApp(t, records)

	rec := serve(e, http.MethodPost, "/admin/add-event/create", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","redirect":"/login","replace":true}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/admin/add-event/create", signedIn(t, records, model.RoleUser))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"forbidden","redirect":"/","replace":true}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/admin/add-event/create", signedIn(t, records, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuard_LoadingRendersPlaceholder(t *testing.T) {
	records := repository.NewMemorySessionRepository()
	ck := signedIn(t, records, model.RoleAdmin)
	e := newApp(t, unavailableRepo{records})

	rec := serve(e, http.MethodGet, "/admin/dashboard", ck)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
}

func TestSession_TamperedCookieIsCleared(t *testing.T) {
	e := newApp(t, repository.NewMemorySessionRepository())
	rec := serve(e, http.MethodGet, "/admin/dashboard", &http.Cookie{Name: cookieCfg.Name, Value: "forged"})
	assert.Equal(t, http.StatusFound, rec.Code)
	cleared := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == cookieCfg.Name && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func rateApp(t *testing.T, rdb *redis.Client) *echo.Echo {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "test:rl",
	}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb, logger.NewNop()))
	return e
}

func TestTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	for name, e := range map[string]*echo.Echo{"redis": rateApp(t, rdb), "local": rateApp(t, nil)} {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login", nil).Code)
			assert.Equal(t, http.StatusNoContent, serve(e, http.MethodPost, "/login", nil).Code)
			rec := serve(e, http.MethodPost, "/login", nil)
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		})
	}
}

func TestRedisCache_PerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	records := repository.NewMemorySessionRepository()
	api, err := backend.New(backend.Config{BaseURL: "http://backend.test"})
	require.NoError(t, err)
	m := session.NewManager(records, nil, api, validator.New(), time.Hour, logger.NewNop())

	var calls int32
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, KeyStrategy: "user_route_query", Prefix: "test:cache"}
	e := echo.New()
	e.Use(Session(cookieCfg, m, logger.NewNop()))
	e.GET("/admin/attendee-insights", func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusOK, map[string]int32{"n": n})
	}, NewRedisCache(cfg, rdb, logger.NewNop()))

	admin := signedIn(t, records, model.RoleAdmin)
	user := signedIn(t, records, model.RoleUser)

	first := serve(e, http.MethodGet, "/admin/attendee-insights", admin)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(e, http.MethodGet, "/admin/attendee-insights", admin)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	other := serve(e, http.MethodGet, "/admin/attendee-insights", user)
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(201, hdr, []byte(`{"a":1}`))
	require.NoError(t, err)
	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, 201, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, `{"a":1}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

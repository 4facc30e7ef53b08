package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/session"
)

var (
	admin = model.Identity{ID: "a1", Role: model.RoleAdmin}
	user  = model.Identity{ID: "u1", Role: model.RoleUser}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		state    session.State
		identity model.Identity
		required model.Role
		want     Decision
	}{
		{"loading never decides", session.Loading, admin, model.RoleAdmin, Decision{Kind: Placeholder}},
		{"loading without identity", session.Loading, model.Identity{}, model.RoleUser, Decision{Kind: Placeholder}},
		{"unauthenticated to login", session.Unauthenticated, model.Identity{}, model.RoleAdmin, Decision{Redirect, LoginPath, true}},
		{"user on admin route", session.Authenticated, user, model.RoleAdmin, Decision{Redirect, RootPath, true}},
		{"admin on user route", session.Authenticated, admin, model.RoleUser, Decision{Redirect, RootPath, true}},
		{"admin renders", session.Authenticated, admin, model.RoleAdmin, Decision{Kind: Render}},
		{"user renders", session.Authenticated, user, model.RoleUser, Decision{Kind: Render}},
		{"any role admits user", session.Authenticated, user, "", Decision{Kind: Render}},
		{"any role admits admin", session.Authenticated, admin, "", Decision{Kind: Render}},
		{"any role still needs a session", session.Unauthenticated, model.Identity{}, "", Decision{Redirect, LoginPath, true}},
		{"any role while loading", session.Loading, model.Identity{}, "", Decision{Kind: Placeholder}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state, tt.identity, tt.required))
		})
	}
}

func TestRoot(t *testing.T) {
	assert.Equal(t, Decision{Redirect, AdminDashboardPath, true}, Root(session.Authenticated, admin))
	assert.Equal(t, Decision{Redirect, UserDashboardPath, true}, Root(session.Authenticated, user))
	assert.Equal(t, Decision{Redirect, LoginPath, true}, Root(session.Unauthenticated, model.Identity{}))
	assert.Equal(t, Decision{Redirect, LoginPath, true}, Root(session.Authenticated, model.Identity{Role: "guest"}))
	assert.Equal(t, Placeholder, Root(session.Loading, model.Identity{}).Kind)
}

func TestPublic(t *testing.T) {
	for _, p := range []string{"/login", "/register", "/healthz"} {
		assert.True(t, Public(p), p)
	}
	for _, p := range []string{"/", "/admin/dashboard", "/user/tickets", "/login/extra"} {
		assert.False(t, Public(p), p)
	}
}

func TestCanDeleteEvent(t *testing.T) {
	assert.True(t, CanDeleteEvent(admin))
	assert.False(t, CanDeleteEvent(user))
	assert.False(t, CanDeleteEvent(model.Identity{}))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "unknown", Kind(7).String())
}

// Package guard decides, for every navigation, whether a screen may render.
// Evaluate is a pure function of the session state, the identity and the
// role the route requires; the echo middleware only translates its
// Decision into a response.
package guard

import (
	"github.com/iliyamo/eventx-studio/internal/model"
	"github.com/iliyamo/eventx-studio/internal/session"
)

// Well known locations.
const (
	LoginPath          = "/login"
	RegisterPath       = "/register"
	HealthPath         = "/healthz"
	RootPath           = "/"
	AdminDashboardPath = "/admin/dashboard"
	UserDashboardPath  = "/user/dashboard"
)

// Kind is the outcome of a guard evaluation.
type Kind int

const (
	// Placeholder means no decision can be made yet.
	Placeholder Kind = iota
	Redirect
	Render
)

func (k Kind) String() string {
	switch k {
	case Placeholder:
		return "placeholder"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decision is what the guard tells the router to do.  Location and Replace
// are only set for Redirect.  Replace means the redirect replaces the
// current history entry instead of pushing a new one.
type Decision struct {
	Kind     Kind
	Location string
	Replace  bool
}

func redirect(location string) Decision {
	return Decision{Kind: Redirect, Location: location, Replace: true}
}

// Evaluate applies the route rules:
//
//	Loading                           -> Placeholder
//	Unauthenticated                   -> Redirect /login
//	Authenticated, role != required   -> Redirect /
//	otherwise                         -> Render
//
// An empty required role admits any authenticated identity.
func Evaluate(state session.State, identity model.Identity, required model.Role) Decision {
	switch state {
	case session.Loading:
		return Decision{Kind: Placeholder}
	case session.Unauthenticated:
		return redirect(LoginPath)
	}
	if required != "" && identity.Role != required {
		return redirect(RootPath)
	}
	return Decision{Kind: Render}
}

// Root resolves the root route: the role's dashboard when signed in, the
// login screen otherwise.  A signed-in identity with an unknown role goes
// to login as well, since no dashboard can render for it.
func Root(state session.State, identity model.Identity) Decision {
	switch state {
	case session.Loading:
		return Decision{Kind: Placeholder}
	case session.Authenticated:
		if target := DashboardFor(identity.Role); target != "" {
			return redirect(target)
		}
	}
	return redirect(LoginPath)
}

// DashboardFor maps a role to its landing route, or "" for unknown roles.
func DashboardFor(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return AdminDashboardPath
	case model.RoleUser:
		return UserDashboardPath
	}
	return ""
}

// Public reports whether path renders without a session.
func Public(path string) bool {
	switch path {
	case LoginPath, RegisterPath, HealthPath:
		return true
	}
	return false
}

// CanDeleteEvent is the client-side check made before any delete call.
func CanDeleteEvent(identity model.Identity) bool {
	return identity.Role == model.RoleAdmin
}

// DeleteDeniedMessage is shown when CanDeleteEvent fails.
const DeleteDeniedMessage = "Only admins can delete events"

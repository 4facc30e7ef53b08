// Package router registers the screens and actions of the web client.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/handler"
	"github.com/iliyamo/eventx-studio/internal/middleware"
)

// RegisterRoutes registers routes that need no session: the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the public screens and session operations.  Login
// and register sit behind limit, the token bucket.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	e.GET("/", a.Root)
	e.GET("/login", a.LoginScreen)
	e.GET("/register", a.RegisterScreen)
	e.POST("/login", a.Login, limit)
	e.POST("/register", a.Register, limit)
	e.POST("/logout", a.Logout)
	e.GET("/session", a.Session)
}

// RegisterShared registers routes open to any signed-in role.  Deleting an
// event is reachable from every event card, so the role check happens in
// the handler, before any backend call.
func RegisterShared(e *echo.Echo, n *handler.NotificationHandler, a *handler.AdminHandler) {
	signedIn := middleware.RequireSession()
	e.GET("/notifications", n.List, signedIn)
	e.POST("/notifications/:id/read", n.MarkRead, signedIn)
	e.POST("/notifications/read-all", n.MarkAllRead, signedIn)
	e.DELETE("/events/:id", a.DeleteEvent, signedIn)
}

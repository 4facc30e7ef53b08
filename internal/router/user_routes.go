package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/handler"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/model"
)

// RegisterUser registers the /user subtree for the user role.
func RegisterUser(e *echo.Echo, h *handler.UserHandler) {
	g := e.Group("/user", middleware.RequireRole(model.RoleUser))

	g.GET("/dashboard", h.Dashboard)
	g.GET("/manage-events", h.Events)
	g.GET("/manage-events/:id", h.Event)
	g.GET("/tickets", h.Tickets)
	g.POST("/tickets/select", h.SelectEvent)
	g.POST("/tickets/book", h.Book)
	g.DELETE("/tickets/:id", h.CancelTicket)
}

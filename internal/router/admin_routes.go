package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/eventx-studio/internal/handler"
	"github.com/iliyamo/eventx-studio/internal/middleware"
	"github.com/iliyamo/eventx-studio/internal/model"
)

// RegisterAdmin registers the /admin subtree.  Every route requires the
// admin role; insights responses go through cache.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/admin", middleware.RequireRole(model.RoleAdmin))

	g.GET("/dashboard", h.Dashboard)
	g.GET("/tickets", h.Tickets)
	g.GET("/attendee-insights", h.Insights, cache)
	g.GET("/attendee-insights/:id", h.EventInsights, cache)

	g.GET("/manage-events", h.ManageEvents)
	g.GET("/manage-events/:id", h.EditEvent)
	g.PATCH("/manage-events/:id", h.PatchEvent)
	g.POST("/manage-events/:id/seats/:index/toggle", h.ToggleEditSeat)
	g.POST("/manage-events/:id/save", h.SaveEvent)
	g.DELETE("/manage-events/:id", h.DeleteEvent)

	g.GET("/add-event", h.AddEvent)
	g.PATCH("/add-event", h.PatchNewEvent)
	g.POST("/add-event/seats/:index/toggle", h.ToggleNewSeat)
	g.POST("/add-event/create", h.CreateEvent)
}

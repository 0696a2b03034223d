package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/traveller-reservation/internal/handler"
)

// RegisterRoutes registers routes that sit outside the versioned API.  At
// the moment it only exposes a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterTravellers mounts the traveller roster API under /v1.  Any
// middleware passed in (rate limiting, for instance) applies to the whole
// group.  There is no authentication: the roster has a single owner.
func RegisterTravellers(e *echo.Echo, h *handler.TravellerHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)

	// ---- Travellers ----
	g.GET("/travellers", h.ListTravellers)
	g.GET("/travellers/:id", h.GetTraveller)
	g.POST("/travellers", h.AddTraveller)
	g.DELETE("/travellers/:id", h.DeleteTraveller)

	// ---- Seats ----
	g.GET("/seats", h.Seats)
	g.GET("/summary", h.Summary)
}

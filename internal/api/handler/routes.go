package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers はルーティングに登録するハンドラー一式
type Handlers struct {
	Event   *EventHandler
	Session *SessionHandler
	Booking *BookingHandler
	Health  *HealthHandler
}

// RegisterRoutes は API のルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/events", h.Event.Create)
	v1.GET("/events", h.Event.List)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.PUT("/events/:id", h.Event.Update)
	v1.DELETE("/events/:id", h.Event.Delete)

	v1.GET("/events/:id/sessions", h.Session.ListByEvent)
	v1.POST("/events/:id/sessions", h.Session.Create)
	v1.GET("/sessions/:id", h.Session.GetByID)

	v1.POST("/bookings", h.Booking.Create)
	v1.GET("/bookings/:id", h.Booking.GetByID)
	v1.POST("/bookings/:id/confirm", h.Booking.Confirm)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)
	v1.GET("/users/:user_id/bookings", h.Booking.ListByUser)
}

package handler

import (
	"context"

	"github.com/sanosuguru/go-session-booking/internal/application"
	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

// CatalogServiceInterface はイベント・セッション登録サービスのインターフェース
type CatalogServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateSession(ctx context.Context, input application.CreateSessionInput) (*session.Session, error)
}

// QueryServiceInterface は参照系サービスのインターフェース
type QueryServiceInterface interface {
	ListEvents(ctx context.Context, input application.ListEventsInput) ([]*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListSessions(ctx context.Context, eventID string, onlyAvailable bool) ([]*application.SessionView, error)
	GetSession(ctx context.Context, id string) (*application.SessionView, error)
	ListUserBookings(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error)
}

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, input application.CreateBookingInput) (*booking.Booking, error)
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error)
	CancelBooking(ctx context.Context, id string) (*booking.Booking, error)
}

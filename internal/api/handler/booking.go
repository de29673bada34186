package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-session-booking/internal/api/middleware"
	"github.com/sanosuguru/go-session-booking/internal/application"
	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
)

// HeaderUserID はリクエスト元ユーザーを示すヘッダー
const HeaderUserID = "X-User-ID"

type BookingHandler struct {
	service BookingServiceInterface
	query   QueryServiceInterface
}

func NewBookingHandler(s BookingServiceInterface, q QueryServiceInterface) *BookingHandler {
	return &BookingHandler{service: s, query: q}
}

// CreateBookingRequest は予約作成リクエスト
// user_id を省略した場合は X-User-ID ヘッダーを使う
type CreateBookingRequest struct {
	UserID         string `json:"user_id" example:"user-123"`
	SessionID      string `json:"session_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	Seats          int    `json:"seats" validate:"required,gt=0" example:"2"`
	IdempotencyKey string `json:"idempotency_key" example:"order-2025-001"`
}

type BookingResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	SessionID      string  `json:"session_id"`
	Seats          int     `json:"seats"`
	PricePerSeat   string  `json:"price_per_seat" example:"8000.00"`
	TotalPrice     string  `json:"total_price" example:"16000.00"`
	Status         string  `json:"status" example:"PENDING"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
	CreatedAt      string  `json:"created_at"`
	ExpiresAt      string  `json:"expires_at"`
	ConfirmedAt    *string `json:"confirmed_at,omitempty"`
	CancelledAt    *string `json:"cancelled_at,omitempty"`
	CancelReason   string  `json:"cancel_reason,omitempty"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:             b.ID,
		UserID:         b.UserID,
		SessionID:      b.SessionID,
		Seats:          b.Seats,
		PricePerSeat:   b.PricePerSeat.StringFixed(2),
		TotalPrice:     b.TotalPrice().StringFixed(2),
		Status:         string(b.Status),
		IdempotencyKey: b.IdempotencyKey,
		CreatedAt:      formatTime(b.CreatedAt),
		ExpiresAt:      formatTime(b.ExpiresAt),
		ConfirmedAt:    formatTimePtr(b.ConfirmedAt),
		CancelledAt:    formatTimePtr(b.CancelledAt),
		CancelReason:   string(b.CancelReason),
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 座席を仮押さえする。価格は確保直前の占有率で確定する
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string false "ユーザーID"
// @Param Idempotency-Key header string false "冪等キー"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "残席不足"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.UserID == "" {
		req.UserID = c.Request().Header.Get(HeaderUserID)
	}
	if key := c.Request().Header.Get(middleware.HeaderIdempotencyKey); key != "" {
		req.IdempotencyKey = key
	}

	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		UserID:         req.UserID,
		SessionID:      req.SessionID,
		Seats:          req.Seats,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ListByUser godoc
// @Summary ユーザーの予約一覧を取得
// @Tags bookings
// @Produce json
// @Param user_id path string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Router /users/{user_id}/bookings [get]
func (h *BookingHandler) ListByUser(c echo.Context) error {
	limit, offset := pagination(c)
	bookings, err := h.query.ListUserBookings(c.Request().Context(), c.Param("user_id"), limit, offset)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Confirm godoc
// @Summary 予約を確定
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "確定できない状態"
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) Confirm(c echo.Context) error {
	b, err := h.service.ConfirmBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、座席を解放する
// @Tags bookings
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "キャンセル済み"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

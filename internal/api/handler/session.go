package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-session-booking/internal/application"
)

type SessionHandler struct {
	catalog CatalogServiceInterface
	query   QueryServiceInterface
}

func NewSessionHandler(catalog CatalogServiceInterface, query QueryServiceInterface) *SessionHandler {
	return &SessionHandler{catalog: catalog, query: query}
}

// CreateSessionRequest はセッション作成リクエスト
// base_price は "12.50" のような文字列と数値のどちらでも受け付ける
type CreateSessionRequest struct {
	StartAt   string          `json:"start_at" validate:"required" example:"2025-12-31T18:00:00+09:00"`
	EndAt     string          `json:"end_at" validate:"required" example:"2025-12-31T21:00:00+09:00"`
	Capacity  int             `json:"capacity" validate:"required,gt=0" example:"500"`
	BasePrice decimal.Decimal `json:"base_price" swaggertype:"string" example:"8000.00"`
}

type SessionResponse struct {
	ID             string `json:"id"`
	EventID        string `json:"event_id"`
	StartAt        string `json:"start_at"`
	EndAt          string `json:"end_at"`
	Capacity       int    `json:"capacity"`
	ReservedSeats  int    `json:"reserved_seats"`
	AvailableSeats int    `json:"available_seats"`
	BasePrice      string `json:"base_price" example:"8000.00"`
	CurrentPrice   string `json:"current_price" example:"9600.00"`
}

func toSessionResponse(v *application.SessionView) *SessionResponse {
	s := v.Session
	return &SessionResponse{
		ID:             s.ID,
		EventID:        s.EventID,
		StartAt:        formatTime(s.StartAt),
		EndAt:          formatTime(s.EndAt),
		Capacity:       s.Capacity,
		ReservedSeats:  s.Reserved,
		AvailableSeats: v.Available,
		BasePrice:      s.BasePrice.StringFixed(2),
		CurrentPrice:   v.CurrentPrice.StringFixed(2),
	}
}

// Create godoc
// @Summary セッションを作成
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "イベントID"
// @Param request body CreateSessionRequest true "セッション情報"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		return badRequest("開始時刻の形式が不正です")
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		return badRequest("終了時刻の形式が不正です")
	}

	ctx := c.Request().Context()
	s, err := h.catalog.CreateSession(ctx, application.CreateSessionInput{
		EventID:   c.Param("id"),
		StartAt:   startAt,
		EndAt:     endAt,
		Capacity:  req.Capacity,
		BasePrice: req.BasePrice,
	})
	if err != nil {
		return toHTTPError(err)
	}

	view, err := h.query.GetSession(ctx, s.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(view))
}

// ListByEvent godoc
// @Summary イベントのセッション一覧を取得
// @Description 残席数と現在価格はリクエスト時点の値
// @Tags sessions
// @Produce json
// @Param id path string true "イベントID"
// @Param available query bool false "残席のあるセッションのみ"
// @Success 200 {array} SessionResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id}/sessions [get]
func (h *SessionHandler) ListByEvent(c echo.Context) error {
	onlyAvailable, _ := strconv.ParseBool(c.QueryParam("available"))
	views, err := h.query.ListSessions(c.Request().Context(), c.Param("id"), onlyAvailable)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]*SessionResponse, len(views))
	for i, v := range views {
		responses[i] = toSessionResponse(v)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetByID godoc
// @Summary セッションを取得
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetByID(c echo.Context) error {
	view, err := h.query.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(view))
}

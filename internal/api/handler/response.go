package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-session-booking/internal/api"
	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
)

// toHTTPError はサービスのエラーを種別に応じたレスポンスに変換する
func toHTTPError(err error) error {
	return api.HTTPErrorFrom(err)
}

// badRequest は入力形式エラーを返す
func badRequest(message string) error {
	return api.NewHTTPError(http.StatusBadRequest, errs.Code(errs.ErrInvalidInput), message)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// pagination は limit と offset のクエリを読む。不正な値は既定値として扱う
func pagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}

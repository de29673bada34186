package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
	"github.com/sanosuguru/go-session-booking/internal/pkg/logger"
)

const internalErrorMessage = "内部サーバーエラー"

// ErrorResponse はエラーレスポンスの統一フォーマット
// Details にはエラー種別（NOT_FOUND, INVALID_INPUT, EXHAUSTED, INVALID_TRANSITION）が入る
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// NewHTTPError はエラー種別付きの HTTPError を作成する
func NewHTTPError(status int, kind, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, ErrorResponse{Error: message, Code: status, Details: kind})
}

// HTTPErrorFrom はドメインエラーを種別に応じた HTTPError に変換する
// 種別を持たないエラーは詳細を伏せて 500 とし、原因は Internal に保持する
func HTTPErrorFrom(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrExhausted), errors.Is(err, errs.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		return NewHTTPError(status, "", internalErrorMessage).SetInternal(err)
	}
	return NewHTTPError(status, errs.Code(err), err.Error()).SetInternal(err)
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := HTTPErrorFrom(err)
	resp := ErrorResponse{Code: he.Code}
	switch m := he.Message.(type) {
	case ErrorResponse:
		resp = m
	case string:
		resp.Error = m
	default:
		resp.Error = http.StatusText(he.Code)
	}

	// エラーログを出力（5xx エラーの場合）
	if he.Code >= 500 {
		cause := err
		if he.Internal != nil {
			cause = he.Internal
		}
		logger.Error("サーバーエラー",
			zap.Int("status", he.Code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(cause),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, resp)
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}

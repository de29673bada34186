package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
)

// CustomValidator はEcho用のカスタムバリデーター
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator は新しいバリデーターを作成する
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate はリクエストのバリデーションを実行する
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return NewHTTPError(http.StatusBadRequest, errs.Code(errs.ErrInvalidInput), err.Error())
	}
	return nil
}

package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ErrNotFound, "イベントが見つかりません")

	assert.Equal(t, "イベントが見つかりません", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestNew_Wrapped(t *testing.T) {
	base := New(ErrExhausted, "空席が足りません")
	wrapped := fmt.Errorf("予約に失敗: %w", base)

	assert.ErrorIs(t, wrapped, base)
	assert.ErrorIs(t, wrapped, ErrExhausted)
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"NotFound", New(ErrNotFound, "x"), "NOT_FOUND"},
		{"InvalidInput", New(ErrInvalidInput, "x"), "INVALID_INPUT"},
		{"Exhausted", New(ErrExhausted, "x"), "EXHAUSTED"},
		{"InvalidTransition", New(ErrInvalidTransition, "x"), "INVALID_TRANSITION"},
		{"種別なし", errors.New("db down"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Code(tt.err))
		})
	}
}

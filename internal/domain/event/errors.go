package event

import "github.com/sanosuguru/go-session-booking/internal/domain/errs"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = errs.New(errs.ErrNotFound, "イベントが見つかりません")
	ErrEventNameRequired      = errs.New(errs.ErrInvalidInput, "イベント名は必須です")
	ErrVenueRequired          = errs.New(errs.ErrInvalidInput, "会場は必須です")
	ErrEventHasActiveBookings = errs.New(errs.ErrInvalidInput, "有効な予約があるイベントは削除できません")
)

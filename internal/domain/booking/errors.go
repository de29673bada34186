package booking

import "github.com/sanosuguru/go-session-booking/internal/domain/errs"

// Booking ドメインのエラー定義
var (
	ErrBookingNotFound        = errs.New(errs.ErrNotFound, "予約が見つかりません")
	ErrUserIDRequired         = errs.New(errs.ErrInvalidInput, "ユーザーIDは必須です")
	ErrInvalidSeats           = errs.New(errs.ErrInvalidInput, "座席数は1以上である必要があります")
	ErrSeatsExceedCapacity    = errs.New(errs.ErrInvalidInput, "座席数がセッションの定員を超えています")
	ErrIdempotencyKeyConflict = errs.New(errs.ErrInvalidInput, "同じ冪等キーで異なる内容の予約が存在します")
	ErrAlreadyConfirmed       = errs.New(errs.ErrInvalidTransition, "予約は既に確定しています")
	ErrAlreadyCancelled       = errs.New(errs.ErrInvalidTransition, "予約は既にキャンセルされています")
	ErrBookingExpired         = errs.New(errs.ErrInvalidTransition, "仮予約の有効期限が切れています")
	ErrNotPending             = errs.New(errs.ErrInvalidTransition, "仮予約状態ではありません")
	ErrNotExpired             = errs.New(errs.ErrInvalidTransition, "仮予約の有効期限が切れていません")
)

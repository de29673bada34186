package session

import "github.com/sanosuguru/go-session-booking/internal/domain/errs"

// Session ドメインのエラー定義
var (
	ErrSessionNotFound  = errs.New(errs.ErrNotFound, "セッションが見つかりません")
	ErrEventIDRequired  = errs.New(errs.ErrInvalidInput, "イベントIDは必須です")
	ErrInvalidCapacity  = errs.New(errs.ErrInvalidInput, "定員は1以上である必要があります")
	ErrInvalidBasePrice = errs.New(errs.ErrInvalidInput, "基本料金は0より大きい必要があります")
	ErrInvalidTimeRange = errs.New(errs.ErrInvalidInput, "終了時刻は開始時刻より後である必要があります")
	ErrSessionOverlap   = errs.New(errs.ErrInvalidInput, "既存のセッションと時間帯が重複しています")

	// ErrSessionUnavailable は予約対象のセッションまたはイベントが存在しないことを示す
	ErrSessionUnavailable = errs.New(errs.ErrInvalidInput, "予約対象のセッションが存在しません")
)

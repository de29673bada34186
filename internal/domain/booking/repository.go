package booking

import (
	"context"
	"time"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する
	// 同一ユーザー・同一冪等キーの予約が既に存在する場合は ErrIdempotencyKeyConflict を返す
	Create(ctx context.Context, booking *Booking) error
	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)
	// GetByIdempotencyKey はユーザーIDと冪等キーから予約を取得する
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*Booking, error)
	// ListByUserID はユーザーの予約一覧を作成日時の新しい順に取得する
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*Booking, error)
	// ListExpiredPending は有効期限切れの仮予約を古い順に取得する
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*Booking, error)
	// Update は予約のステータスを更新する
	Update(ctx context.Context, booking *Booking) error
}

package session

import "context"

// Repository はセッションリポジトリのインターフェース
// 予約済み席数の更新は在庫台帳の責務のため、ここには含めない
type Repository interface {
	// Create は新しいセッションを作成する
	Create(ctx context.Context, session *Session) error
	// GetByID はIDからセッションを取得する
	GetByID(ctx context.Context, id string) (*Session, error)
	// ListByEventID はイベントIDからセッション一覧を開始時刻順に取得する
	ListByEventID(ctx context.Context, eventID string) ([]*Session, error)
}

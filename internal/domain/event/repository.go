package event

import "context"

// ListFilter はイベント一覧の絞り込み条件
type ListFilter struct {
	Category string
	Limit    int
	Offset   int
}

// Repository はイベントリポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error
	// GetByID はIDからイベントを取得する
	GetByID(ctx context.Context, id string) (*Event, error)
	// List はイベント一覧を取得する
	List(ctx context.Context, filter ListFilter) ([]*Event, error)
	// Update はイベントを更新する
	Update(ctx context.Context, event *Event) error
	// Delete はイベントと配下のセッションを削除する
	// 配下のセッションに座席を保持している予約があれば ErrEventHasActiveBookings を返す。
	// 確認と削除は各セッションの在庫操作と直列化して行う
	Delete(ctx context.Context, id string) error
}

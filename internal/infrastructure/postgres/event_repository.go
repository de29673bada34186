package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-session-booking/internal/domain/event"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Venue       string         `db:"venue"`
	Categories  pq.StringArray `db:"categories"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// toEntity はeventRowをEventエンティティに変換する
func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Venue:       r.Venue,
		Categories:  append([]string{}, r.Categories...),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

const eventColumns = `id, name, description, venue, categories, created_at, updated_at`

// EventRepository はイベントリポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (id, name, description, venue, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Venue, pq.StringArray(e.Categories), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	var row eventRow
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はイベント一覧を作成日時の昇順で取得する
// Limit が0以下の場合は件数を制限しない
func (r *EventRepository) List(ctx context.Context, filter event.ListFilter) ([]*event.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE $1 = '' OR EXISTS (SELECT 1 FROM unnest(categories) AS c WHERE lower(c) = lower($1))
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	var rows []eventRow
	err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query,
		filter.Category, nullLimit(filter.Limit), max(filter.Offset, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("イベント一覧取得に失敗しました: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i, row := range rows {
		events[i] = row.toEntity()
	}
	return events, nil
}

// Update はイベントを更新する
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, venue = $3, categories = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		e.Name, e.Description, e.Venue, pq.StringArray(e.Categories), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("イベント更新に失敗しました: %w", err)
	}
	return requireAffected(result, event.ErrEventNotFound)
}

// Delete はイベントを削除する。セッションと予約は外部キーで連鎖削除される
// イベント行と配下のセッション行を FOR UPDATE でロックしてから座席の保持を確認するため、
// 同じセッションの在庫台帳のトランザクションとは直列化される
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	return NewTxManager(r.db).WithTx(ctx, func(txCtx context.Context, tx *sqlx.Tx) error {
		var one int
		err := tx.GetContext(txCtx, &one, `SELECT 1 FROM events WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return event.ErrEventNotFound
			}
			return fmt.Errorf("イベントのロック取得に失敗しました: %w", err)
		}

		var reserved []int
		query := `SELECT reserved FROM sessions WHERE event_id = $1 ORDER BY id FOR UPDATE`
		if err := tx.SelectContext(txCtx, &reserved, query, id); err != nil {
			return fmt.Errorf("セッションのロック取得に失敗しました: %w", err)
		}
		for _, n := range reserved {
			if n > 0 {
				return event.ErrEventHasActiveBookings
			}
		}

		if _, err := tx.ExecContext(txCtx, `DELETE FROM events WHERE id = $1`, id); err != nil {
			return fmt.Errorf("イベント削除に失敗しました: %w", err)
		}
		return nil
	})
}

// requireAffected は更新行がなければ notFound を返す
func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

// nullLimit は0以下を NULL（LIMIT なし）に変換する
func nullLimit(limit int) sql.NullInt64 {
	if limit <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(limit), Valid: true}
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

type sessionRow struct {
	ID        string          `db:"id"`
	EventID   string          `db:"event_id"`
	StartAt   time.Time       `db:"start_at"`
	EndAt     time.Time       `db:"end_at"`
	Capacity  int             `db:"capacity"`
	Reserved  int             `db:"reserved"`
	BasePrice decimal.Decimal `db:"base_price"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r *sessionRow) toEntity() *session.Session {
	return &session.Session{
		ID:        r.ID,
		EventID:   r.EventID,
		StartAt:   r.StartAt,
		EndAt:     r.EndAt,
		Capacity:  r.Capacity,
		Reserved:  r.Reserved,
		BasePrice: r.BasePrice,
		CreatedAt: r.CreatedAt,
	}
}

const sessionColumns = `id, event_id, start_at, end_at, capacity, reserved, base_price, created_at`

// SessionRepository はセッションリポジトリのPostgreSQL実装
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository はSessionRepositoryを作成する
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create は新しいセッションを作成する
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO sessions (id, event_id, start_at, end_at, capacity, reserved, base_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		s.ID, s.EventID, s.StartAt, s.EndAt, s.Capacity, s.Reserved, s.BasePrice, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("セッション作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからセッションを取得する
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	var row sessionRow
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("セッション取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByEventID はイベント配下のセッションを開始時刻順に取得する
func (r *SessionRepository) ListByEventID(ctx context.Context, eventID string) ([]*session.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE event_id = $1 ORDER BY start_at, id`

	var rows []sessionRow
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("セッション一覧取得に失敗しました: %w", err)
	}

	sessions := make([]*session.Session, len(rows))
	for i, row := range rows {
		sessions[i] = row.toEntity()
	}
	return sessions, nil
}

var _ session.Repository = (*SessionRepository)(nil)

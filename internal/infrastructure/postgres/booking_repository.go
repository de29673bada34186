package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
)

// uniqueViolation は一意制約違反の SQLSTATE
const uniqueViolation = "23505"

type bookingRow struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	SessionID      string          `db:"session_id"`
	Seats          int             `db:"seats"`
	PricePerSeat   decimal.Decimal `db:"price_per_seat"`
	Status         string          `db:"status"`
	IdempotencyKey sql.NullString  `db:"idempotency_key"`
	CreatedAt      time.Time       `db:"created_at"`
	ExpiresAt      time.Time       `db:"expires_at"`
	ConfirmedAt    *time.Time      `db:"confirmed_at"`
	CancelledAt    *time.Time      `db:"cancelled_at"`
	CancelReason   string          `db:"cancel_reason"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:             r.ID,
		UserID:         r.UserID,
		SessionID:      r.SessionID,
		Seats:          r.Seats,
		PricePerSeat:   r.PricePerSeat,
		Status:         booking.Status(r.Status),
		IdempotencyKey: r.IdempotencyKey.String,
		CreatedAt:      r.CreatedAt,
		ExpiresAt:      r.ExpiresAt,
		ConfirmedAt:    r.ConfirmedAt,
		CancelledAt:    r.CancelledAt,
		CancelReason:   booking.CancelReason(r.CancelReason),
	}
}

const bookingColumns = `id, user_id, session_id, seats, price_per_seat, status, idempotency_key,
	created_at, expires_at, confirmed_at, cancelled_at, cancel_reason`

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository はBookingRepositoryを作成する
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create は新しい予約を作成する
func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	key := sql.NullString{String: b.IdempotencyKey, Valid: b.IdempotencyKey != ""}
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		b.ID, b.UserID, b.SessionID, b.Seats, b.PricePerSeat, string(b.Status), key,
		b.CreatedAt, b.ExpiresAt, b.ConfirmedAt, b.CancelledAt, string(b.CancelReason),
	)
	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return booking.ErrIdempotencyKeyConflict
		}
		return fmt.Errorf("予約作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
}

// GetByIdempotencyKey はユーザーIDと冪等キーから予約を取得する
func (r *BookingRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*booking.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 AND idempotency_key = $2`, userID, key)
}

func (r *BookingRepository) getOne(ctx context.Context, query string, args ...any) (*booking.Booking, error) {
	var row bookingRow
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// ListByUserID はユーザーの予約一覧を新しい順に取得する
func (r *BookingRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, nullLimit(limit), max(offset, 0))
}

// ListExpiredPending は有効期限切れの仮予約を期限の古い順に取得する
func (r *BookingRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]*booking.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at
		LIMIT $3
	`
	return r.list(ctx, query, string(booking.StatusPending), now, nullLimit(limit))
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*booking.Booking, error) {
	var rows []bookingRow
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗しました: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

// Update は予約のステータスを更新する
func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, confirmed_at = $2, cancelled_at = $3, cancel_reason = $4
		WHERE id = $5
	`
	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		string(b.Status), b.ConfirmedAt, b.CancelledAt, string(b.CancelReason), b.ID,
	)
	if err != nil {
		return fmt.Errorf("予約更新に失敗しました: %w", err)
	}
	return requireAffected(result, booking.ErrBookingNotFound)
}

var _ booking.Repository = (*BookingRepository)(nil)

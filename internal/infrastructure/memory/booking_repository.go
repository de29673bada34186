package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
)

// BookingRepository はメモリ上の予約リポジトリ
type BookingRepository struct {
	store *Store
}

// NewBookingRepository は新しい予約リポジトリを作成する
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create は新しい予約を作成する
func (r *BookingRepository) Create(_ context.Context, b *booking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.bookings[b.ID]; ok {
		return fmt.Errorf("予約IDが重複しています: %s", b.ID)
	}
	if b.IdempotencyKey != "" {
		k := idempotencyKey{userID: b.UserID, key: b.IdempotencyKey}
		if _, ok := r.store.idempotency[k]; ok {
			return booking.ErrIdempotencyKeyConflict
		}
		r.store.idempotency[k] = b.ID
	}
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

// GetByID はIDから予約を取得する
func (r *BookingRepository) GetByID(_ context.Context, id string) (*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

// GetByIdempotencyKey はユーザーIDと冪等キーから予約を取得する
func (r *BookingRepository) GetByIdempotencyKey(_ context.Context, userID, key string) (*booking.Booking, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	id, ok := r.store.idempotency[idempotencyKey{userID: userID, key: key}]
	if !ok {
		return nil, booking.ErrBookingNotFound
	}
	return cloneBooking(r.store.bookings[id]), nil
}

// ListByUserID はユーザーの予約一覧を新しい順に取得する
func (r *BookingRepository) ListByUserID(_ context.Context, userID string, limit, offset int) ([]*booking.Booking, error) {
	r.store.mu.RLock()
	bookings := make([]*booking.Booking, 0)
	for _, b := range r.store.bookings {
		if b.UserID == userID {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].CreatedAt.Equal(bookings[j].CreatedAt) {
			return bookings[i].ID > bookings[j].ID
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return paginate(bookings, limit, offset), nil
}

// ListExpiredPending は有効期限切れの仮予約を期限の古い順に取得する
func (r *BookingRepository) ListExpiredPending(_ context.Context, now time.Time, limit int) ([]*booking.Booking, error) {
	r.store.mu.RLock()
	bookings := make([]*booking.Booking, 0)
	for _, b := range r.store.bookings {
		if b.IsExpired(now) {
			bookings = append(bookings, cloneBooking(b))
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].ExpiresAt.Before(bookings[j].ExpiresAt)
	})
	return paginate(bookings, limit, 0), nil
}

// Update は予約を更新する
func (r *BookingRepository) Update(_ context.Context, b *booking.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.bookings[b.ID]; !ok {
		return booking.ErrBookingNotFound
	}
	r.store.bookings[b.ID] = cloneBooking(b)
	return nil
}

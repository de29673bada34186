//go:build integration
// +build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-session-booking/internal/config"
	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	cfg := config.Load()

	db, err := NewConnection(&cfg.Database)
	if err != nil {
		t.Skipf("DB接続エラー: %v", err)
	}
	if _, err := RunMigrations(db.DB, "../../../migrations"); err != nil {
		t.Fatalf("マイグレーションエラー: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM bookings")
		db.Exec("DELETE FROM sessions")
		db.Exec("DELETE FROM events")
		db.Close()
	})
	return db
}

func seed(t *testing.T, db *sqlx.DB, capacity int) *session.Session {
	t.Helper()
	ctx := context.Background()

	e := event.NewEvent("統合テスト", "", "テスト会場", []string{"music"})
	require.NoError(t, NewEventRepository(db).Create(ctx, e))

	start := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	s := session.NewSession(e.ID, start, start.Add(2*time.Hour), capacity, decimal.NewFromInt(10))
	require.NoError(t, NewSessionRepository(db).Create(ctx, s))
	return s
}

func TestLedger_ConcurrentReserve(t *testing.T) {
	db := setupDB(t)
	s := seed(t, db, 10)
	ledger := NewLedger(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(ctx, s.ID, 1)
			if err == nil {
				succeeded.Add(1)
				return
			}
			if !errors.Is(err, inventory.ErrExhausted) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), succeeded.Load())
	occ, err := ledger.Occupancy(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, occ.Reserved)
}

func TestLedger_AtomicallyCommitsBookingWithReservation(t *testing.T) {
	db := setupDB(t)
	s := seed(t, db, 2)
	ledger := NewLedger(db)
	bookings := NewBookingRepository(db)
	ctx := context.Background()
	now := time.Now().Truncate(time.Microsecond)

	t.Run("fn が成功すれば予約と席数が両方コミットされる", func(t *testing.T) {
		var created *booking.Booking
		err := ledger.Atomically(ctx, s.ID, func(txCtx context.Context, slot *inventory.Slot) error {
			if _, err := slot.Reserve(1); err != nil {
				return err
			}
			created = booking.NewBooking("user-1", s.ID, 1, decimal.NewFromInt(10), "key-1", now, time.Minute)
			return bookings.Create(txCtx, created)
		})
		require.NoError(t, err)

		got, err := bookings.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, got.PricePerSeat.Equal(decimal.NewFromInt(10)))
		occ, err := ledger.Occupancy(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, occ.Reserved)
	})

	t.Run("冪等キー重複ではロールバックされる", func(t *testing.T) {
		err := ledger.Atomically(ctx, s.ID, func(txCtx context.Context, slot *inventory.Slot) error {
			if _, err := slot.Reserve(1); err != nil {
				return err
			}
			dup := booking.NewBooking("user-1", s.ID, 1, decimal.NewFromInt(10), "key-1", now, time.Minute)
			return bookings.Create(txCtx, dup)
		})
		assert.ErrorIs(t, err, booking.ErrIdempotencyKeyConflict)

		occ, err := ledger.Occupancy(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, occ.Reserved)
	})
}

func TestEventRepository_DeleteSerializedWithLedger(t *testing.T) {
	db := setupDB(t)
	ledger := NewLedger(db)
	events := NewEventRepository(db)
	ctx := context.Background()

	t.Run("進行中の確保がコミットされるまで待ち、座席があれば削除しない", func(t *testing.T) {
		s := seed(t, db, 5)

		entered := make(chan struct{})
		proceed := make(chan struct{})
		reserveErr := make(chan error, 1)
		go func() {
			reserveErr <- ledger.Atomically(ctx, s.ID, func(_ context.Context, slot *inventory.Slot) error {
				close(entered)
				<-proceed
				_, err := slot.Reserve(1)
				return err
			})
		}()
		<-entered

		deleteErr := make(chan error, 1)
		go func() { deleteErr <- events.Delete(ctx, s.EventID) }()

		select {
		case err := <-deleteErr:
			t.Fatalf("確保の途中で削除が完了した: %v", err)
		case <-time.After(100 * time.Millisecond):
		}
		close(proceed)

		require.NoError(t, <-reserveErr)
		assert.ErrorIs(t, <-deleteErr, event.ErrEventHasActiveBookings)

		occ, err := ledger.Occupancy(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, occ.Reserved)
	})

	t.Run("座席がなければセッションごと削除される", func(t *testing.T) {
		s := seed(t, db, 5)

		require.NoError(t, events.Delete(ctx, s.EventID))

		_, err := NewSessionRepository(db).GetByID(ctx, s.ID)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		assert.ErrorIs(t, events.Delete(ctx, s.EventID), event.ErrEventNotFound)
	})
}

func TestRepositories(t *testing.T) {
	db := setupDB(t)
	s := seed(t, db, 5)
	ctx := context.Background()

	t.Run("イベントをカテゴリで絞り込める", func(t *testing.T) {
		events, err := NewEventRepository(db).List(ctx, event.ListFilter{Category: "MUSIC"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, s.EventID, events[0].ID)
	})

	t.Run("期限切れの仮予約を取得できる", func(t *testing.T) {
		repo := NewBookingRepository(db)
		now := time.Now()
		b := booking.NewBooking("user-2", s.ID, 1, decimal.NewFromInt(10), "", now.Add(-time.Hour), time.Minute)
		require.NoError(t, repo.Create(ctx, b))

		expired, err := repo.ListExpiredPending(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, b.ID, expired[0].ID)
		assert.Empty(t, expired[0].IdempotencyKey)

		require.NoError(t, expired[0].Expire(now))
		require.NoError(t, repo.Update(ctx, expired[0]))

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, got.Status)
		assert.Equal(t, booking.CancelReasonExpired, got.CancelReason)
	})

	t.Run("存在しないセッション", func(t *testing.T) {
		_, err := NewSessionRepository(db).GetByID(ctx, "unknown")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
		_, err = NewLedger(db).Occupancy(ctx, "unknown")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newPending() *Booking {
	return NewBooking("user-1", "session-1", 2, decimal.NewFromInt(10), "key-1", baseTime, 15*time.Minute)
}

func TestNewBooking(t *testing.T) {
	b := newPending()

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, baseTime, b.CreatedAt)
	assert.Equal(t, baseTime.Add(15*time.Minute), b.ExpiresAt)
	assert.True(t, b.IsActive())
	assert.True(t, b.TotalPrice().Equal(decimal.NewFromInt(20)))
}

func TestBooking_Validate(t *testing.T) {
	t.Run("有効な予約", func(t *testing.T) {
		assert.NoError(t, newPending().Validate())
	})

	t.Run("ユーザーIDが空", func(t *testing.T) {
		b := newPending()
		b.UserID = ""
		assert.ErrorIs(t, b.Validate(), ErrUserIDRequired)
	})

	t.Run("座席数が0", func(t *testing.T) {
		b := newPending()
		b.Seats = 0
		err := b.Validate()
		assert.ErrorIs(t, err, ErrInvalidSeats)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestBooking_Confirm(t *testing.T) {
	t.Run("仮予約を確定できる", func(t *testing.T) {
		b := newPending()
		now := baseTime.Add(time.Minute)

		require.NoError(t, b.Confirm(now))
		assert.Equal(t, StatusConfirmed, b.Status)
		require.NotNil(t, b.ConfirmedAt)
		assert.Equal(t, now, *b.ConfirmedAt)
		assert.True(t, b.IsActive())
	})

	t.Run("確定済みは再確定できない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Confirm(baseTime))

		err := b.Confirm(baseTime)
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("キャンセル済みは確定できない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(baseTime))

		err := b.Confirm(baseTime)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("有効期限切れは確定できない", func(t *testing.T) {
		b := newPending()

		err := b.Confirm(b.ExpiresAt)
		assert.ErrorIs(t, err, ErrBookingExpired)
		assert.Equal(t, StatusPending, b.Status)
	})
}

func TestBooking_Cancel(t *testing.T) {
	t.Run("仮予約をキャンセルできる", func(t *testing.T) {
		b := newPending()

		require.NoError(t, b.Cancel(baseTime))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, CancelReasonUser, b.CancelReason)
		require.NotNil(t, b.CancelledAt)
		assert.False(t, b.IsActive())
	})

	t.Run("確定済みをキャンセルできる", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Confirm(baseTime))

		require.NoError(t, b.Cancel(baseTime))
		assert.Equal(t, StatusCancelled, b.Status)
	})

	t.Run("キャンセル済みは再キャンセルできない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(baseTime))

		assert.ErrorIs(t, b.Cancel(baseTime), ErrAlreadyCancelled)
	})

	t.Run("価格はキャンセル後も変わらない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(baseTime))
		assert.True(t, b.PricePerSeat.Equal(decimal.NewFromInt(10)))
	})
}

func TestBooking_Expire(t *testing.T) {
	t.Run("期限切れの仮予約を失効させる", func(t *testing.T) {
		b := newPending()

		require.NoError(t, b.Expire(b.ExpiresAt.Add(time.Second)))
		assert.Equal(t, StatusCancelled, b.Status)
		assert.Equal(t, CancelReasonExpired, b.CancelReason)
	})

	t.Run("期限前は失効できない", func(t *testing.T) {
		b := newPending()
		assert.ErrorIs(t, b.Expire(baseTime), ErrNotExpired)
		assert.Equal(t, StatusPending, b.Status)
	})

	t.Run("確定済みは失効しない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Confirm(baseTime))
		assert.ErrorIs(t, b.Expire(b.ExpiresAt.Add(time.Hour)), ErrNotPending)
		assert.Equal(t, StatusConfirmed, b.Status)
	})

	t.Run("キャンセル済みは失効しない", func(t *testing.T) {
		b := newPending()
		require.NoError(t, b.Cancel(baseTime))
		assert.ErrorIs(t, b.Expire(b.ExpiresAt.Add(time.Hour)), ErrNotPending)
		assert.Equal(t, CancelReasonUser, b.CancelReason)
	})
}

func TestNewNotification(t *testing.T) {
	b := newPending()
	n := NewNotification(NotificationCreated, b, baseTime)

	b.Status = StatusCancelled

	assert.Equal(t, NotificationCreated, n.Type)
	assert.Equal(t, StatusPending, n.Booking.Status)
	assert.Equal(t, baseTime, n.OccurredAt)
}

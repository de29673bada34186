package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
)

func TestSlot_Reserve(t *testing.T) {
	t.Run("空席があれば確保できる", func(t *testing.T) {
		s := NewSlot("s1", Occupancy{Capacity: 2})

		token, err := s.Reserve(2)
		require.NoError(t, err)
		assert.Equal(t, "s1", token.SessionID)
		assert.Equal(t, 2, token.Seats)
		assert.Equal(t, Occupancy{Capacity: 2, Reserved: 0}, token.Before)
		assert.Equal(t, Occupancy{Capacity: 2, Reserved: 2}, s.Occupancy())
		assert.True(t, s.Dirty())
	})

	t.Run("空席不足は Exhausted", func(t *testing.T) {
		s := NewSlot("s1", Occupancy{Capacity: 2, Reserved: 1})

		_, err := s.Reserve(2)
		assert.ErrorIs(t, err, ErrExhausted)
		assert.ErrorIs(t, err, errs.ErrExhausted)
		assert.Equal(t, 1, s.Occupancy().Reserved)
		assert.False(t, s.Dirty())
	})

	t.Run("座席数0は不正", func(t *testing.T) {
		s := NewSlot("s1", Occupancy{Capacity: 2})

		_, err := s.Reserve(0)
		assert.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestSlot_Release(t *testing.T) {
	t.Run("解放すると残席が戻る", func(t *testing.T) {
		s := NewSlot("s1", Occupancy{Capacity: 3, Reserved: 3})

		require.NoError(t, s.Release(2))
		assert.Equal(t, 2, s.Occupancy().Available())
		assert.True(t, s.Dirty())
	})

	t.Run("予約済みを超える解放はエラー", func(t *testing.T) {
		s := NewSlot("s1", Occupancy{Capacity: 3, Reserved: 1})

		assert.ErrorIs(t, s.Release(2), ErrReleaseUnderflow)
		assert.Equal(t, 1, s.Occupancy().Reserved)
	})
}

func TestOccupancy_Conservation(t *testing.T) {
	s := NewSlot("s1", Occupancy{Capacity: 5})
	for _, seats := range []int{1, 2, 2} {
		_, err := s.Reserve(seats)
		require.NoError(t, err)
		occ := s.Occupancy()
		assert.Equal(t, occ.Capacity, occ.Available()+occ.Reserved)
	}
	_, err := s.Reserve(1)
	assert.ErrorIs(t, err, ErrExhausted)
}

package session

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	start := time.Now().Add(24 * time.Hour)
	end := start.Add(2 * time.Hour)

	s := NewSession("event-1", start, end, 100, decimal.NewFromInt(5000))

	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "event-1", s.EventID)
	assert.Equal(t, 100, s.Capacity)
	assert.Equal(t, 0, s.Reserved)
	assert.Equal(t, 100, s.Available())
	assert.True(t, s.BasePrice.Equal(decimal.NewFromInt(5000)))
	assert.NotZero(t, s.CreatedAt)
}

func TestSession_Available(t *testing.T) {
	s := &Session{Capacity: 10, Reserved: 7}
	assert.Equal(t, 3, s.Available())
}

func TestSession_Validate(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Hour)
	price := decimal.NewFromInt(10)

	tests := []struct {
		name        string
		session     *Session
		expectedErr error
	}{
		{
			name:        "有効なセッション",
			session:     &Session{EventID: "e", StartAt: start, EndAt: end, Capacity: 2, BasePrice: price},
			expectedErr: nil,
		},
		{
			name:        "イベントIDが空",
			session:     &Session{StartAt: start, EndAt: end, Capacity: 2, BasePrice: price},
			expectedErr: ErrEventIDRequired,
		},
		{
			name:        "定員が0",
			session:     &Session{EventID: "e", StartAt: start, EndAt: end, Capacity: 0, BasePrice: price},
			expectedErr: ErrInvalidCapacity,
		},
		{
			name:        "定員が負",
			session:     &Session{EventID: "e", StartAt: start, EndAt: end, Capacity: -1, BasePrice: price},
			expectedErr: ErrInvalidCapacity,
		},
		{
			name:        "基本料金が0",
			session:     &Session{EventID: "e", StartAt: start, EndAt: end, Capacity: 2, BasePrice: decimal.Zero},
			expectedErr: ErrInvalidBasePrice,
		},
		{
			name:        "終了時刻が開始時刻と同じ",
			session:     &Session{EventID: "e", StartAt: start, EndAt: start, Capacity: 2, BasePrice: price},
			expectedErr: ErrInvalidTimeRange,
		},
		{
			name:        "終了時刻が開始時刻より前",
			session:     &Session{EventID: "e", StartAt: end, EndAt: start, Capacity: 2, BasePrice: price},
			expectedErr: ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.session.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSession_Overlaps(t *testing.T) {
	base := time.Date(2025, 12, 31, 18, 0, 0, 0, time.UTC)
	s := &Session{StartAt: base, EndAt: base.Add(2 * time.Hour)}

	tests := []struct {
		name  string
		other *Session
		want  bool
	}{
		{"完全に一致", &Session{StartAt: base, EndAt: base.Add(2 * time.Hour)}, true},
		{"後半が重なる", &Session{StartAt: base.Add(time.Hour), EndAt: base.Add(3 * time.Hour)}, true},
		{"内包される", &Session{StartAt: base.Add(30 * time.Minute), EndAt: base.Add(time.Hour)}, true},
		{"終了直後に開始", &Session{StartAt: base.Add(2 * time.Hour), EndAt: base.Add(3 * time.Hour)}, false},
		{"開始前に終了", &Session{StartAt: base.Add(-time.Hour), EndAt: base}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(s))
		})
	}
}

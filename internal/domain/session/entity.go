package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session はイベントの公演回を表す
// Reserved は在庫台帳（inventory.Ledger）経由でのみ変更される
type Session struct {
	ID        string
	EventID   string
	StartAt   time.Time
	EndAt     time.Time
	Capacity  int
	Reserved  int
	BasePrice decimal.Decimal
	CreatedAt time.Time
}

// NewSession は新しいセッションを作成する
func NewSession(eventID string, startAt, endAt time.Time, capacity int, basePrice decimal.Decimal) *Session {
	return &Session{
		ID:        uuid.NewString(),
		EventID:   eventID,
		StartAt:   startAt,
		EndAt:     endAt,
		Capacity:  capacity,
		BasePrice: basePrice,
		CreatedAt: time.Now(),
	}
}

// Available は残席数を返す
func (s *Session) Available() int {
	return s.Capacity - s.Reserved
}

// Validate はセッションの検証を行う
func (s *Session) Validate() error {
	if s.EventID == "" {
		return ErrEventIDRequired
	}
	if s.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if !s.BasePrice.IsPositive() {
		return ErrInvalidBasePrice
	}
	if !s.StartAt.Before(s.EndAt) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Overlaps は同じイベント内で時間帯が重なるかを返す
func (s *Session) Overlaps(other *Session) bool {
	return s.StartAt.Before(other.EndAt) && other.StartAt.Before(s.EndAt)
}

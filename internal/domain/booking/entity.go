package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status は予約のステータス
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// CancelReason はキャンセル理由
type CancelReason string

const (
	CancelReasonUser    CancelReason = "user"
	CancelReasonExpired CancelReason = "expired"
)

// Booking はセッションに対する座席予約を表す
// PricePerSeat は作成時に確定し、以後変更されない
type Booking struct {
	ID             string
	UserID         string
	SessionID      string
	Seats          int
	PricePerSeat   decimal.Decimal
	Status         Status
	IdempotencyKey string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	ConfirmedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   CancelReason
}

// NewBooking は仮予約状態の予約を作成する
func NewBooking(userID, sessionID string, seats int, pricePerSeat decimal.Decimal, idempotencyKey string, now time.Time, ttl time.Duration) *Booking {
	return &Booking{
		ID:             uuid.NewString(),
		UserID:         userID,
		SessionID:      sessionID,
		Seats:          seats,
		PricePerSeat:   pricePerSeat,
		Status:         StatusPending,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.Seats < 1 {
		return ErrInvalidSeats
	}
	return nil
}

// Confirm は予約を確定する
// 仮予約の有効期限を過ぎている場合は確定できない
func (b *Booking) Confirm(now time.Time) error {
	switch b.Status {
	case StatusConfirmed:
		return ErrAlreadyConfirmed
	case StatusCancelled:
		return ErrAlreadyCancelled
	}
	if b.IsExpired(now) {
		return ErrBookingExpired
	}
	b.Status = StatusConfirmed
	b.ConfirmedAt = &now
	return nil
}

// Cancel はユーザー操作で予約をキャンセルする
// 呼び出し側はエラーが返らなかった場合に限り座席を解放する
func (b *Booking) Cancel(now time.Time) error {
	return b.cancel(now, CancelReasonUser)
}

// Expire は期限切れの仮予約をキャンセルする
func (b *Booking) Expire(now time.Time) error {
	if b.Status != StatusPending {
		return ErrNotPending
	}
	if !b.IsExpired(now) {
		return ErrNotExpired
	}
	return b.cancel(now, CancelReasonExpired)
}

func (b *Booking) cancel(now time.Time, reason CancelReason) error {
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	return nil
}

// IsExpired は仮予約の有効期限を過ぎているかを返す
func (b *Booking) IsExpired(now time.Time) bool {
	return b.Status == StatusPending && !now.Before(b.ExpiresAt)
}

// IsActive は座席を保持している状態かを返す
func (b *Booking) IsActive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// TotalPrice は合計金額を返す
func (b *Booking) TotalPrice() decimal.Decimal {
	return b.PricePerSeat.Mul(decimal.NewFromInt(int64(b.Seats)))
}

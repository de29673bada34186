package booking

import (
	"context"
	"time"
)

// NotificationType は予約イベントの種別
type NotificationType string

const (
	NotificationCreated   NotificationType = "booking.created"
	NotificationConfirmed NotificationType = "booking.confirmed"
	NotificationCancelled NotificationType = "booking.cancelled"
	NotificationExpired   NotificationType = "booking.expired"
)

// Notification は予約の状態変化を外部へ通知するメッセージ
type Notification struct {
	Type       NotificationType
	Booking    *Booking
	OccurredAt time.Time
}

// NewNotification は通知を作成する
// 予約はコピーして保持する
func NewNotification(typ NotificationType, b *Booking, now time.Time) Notification {
	copied := *b
	return Notification{Type: typ, Booking: &copied, OccurredAt: now}
}

// Publisher は予約通知の送信先
// 送信失敗は予約処理の結果に影響させない
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// Package rabbitmq は予約通知を RabbitMQ に送信する
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
)

// channel は Publisher が使う amqp.Channel のメソッド
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// message は送信するメッセージ本文
type message struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id"`
	Seats        int       `json:"seats"`
	PricePerSeat string    `json:"price_per_seat"`
	Status       string    `json:"status"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func newMessage(n booking.Notification) message {
	b := n.Booking
	return message{
		Type:         string(n.Type),
		BookingID:    b.ID,
		UserID:       b.UserID,
		SessionID:    b.SessionID,
		Seats:        b.Seats,
		PricePerSeat: b.PricePerSeat.StringFixed(2),
		Status:       string(b.Status),
		CancelReason: string(b.CancelReason),
		OccurredAt:   n.OccurredAt.UTC(),
	}
}

// Publisher は topic exchange に予約通知を送信する
// ルーティングキーは通知種別（booking.created など）
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
}

// Dial はブローカーに接続し、exchange を宣言した Publisher を返す
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("チャネル作成に失敗しました: %w", err)
	}
	p, err := NewPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewPublisher は既存のチャネルから Publisher を作成する
func NewPublisher(ch channel, exchange string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("exchange宣言に失敗しました: %w", err)
	}
	return &Publisher{ch: ch, exchange: exchange}, nil
}

// Publish は通知を永続メッセージとして送信する
func (p *Publisher) Publish(ctx context.Context, n booking.Notification) error {
	if n.Booking == nil {
		return fmt.Errorf("通知に予約が含まれていません: %s", n.Type)
	}
	body, err := json.Marshal(newMessage(n))
	if err != nil {
		return fmt.Errorf("通知のシリアライズに失敗しました: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.Booking.ID + ":" + string(n.Type),
		Timestamp:    n.OccurredAt.UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.PublishWithContext(ctx, p.exchange, string(n.Type), false, false, msg); err != nil {
		return fmt.Errorf("通知の送信に失敗しました: %w", err)
	}
	return nil
}

// Close はチャネルと接続を閉じる
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var _ booking.Publisher = (*Publisher)(nil)

package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/errs"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
	"github.com/sanosuguru/go-session-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-session-booking/internal/pkg/metrics"
)

const (
	DefaultPendingTTL     = 15 * time.Minute
	DefaultSweepBatchSize = 100
)

// BookingService は予約のライフサイクル（仮予約・確定・キャンセル・期限切れ）を管理する
// セッションの予約済み席数を変える操作はすべて在庫台帳のクリティカルセクション内で行う
type BookingService struct {
	bookingRepo    booking.Repository
	sessionRepo    session.Repository
	eventRepo      event.Repository
	ledger         inventory.Ledger
	policy         pricing.Policy
	publisher      booking.Publisher
	metrics        *metrics.Metrics
	now            func() time.Time
	pendingTTL     time.Duration
	sweepBatchSize int
}

// BookingOption は BookingService のオプション
type BookingOption func(*BookingService)

// WithClock は現在時刻の取得関数を差し替える
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// WithPublisher は予約通知の送信先を設定する
func WithPublisher(p booking.Publisher) BookingOption {
	return func(s *BookingService) { s.publisher = p }
}

// WithMetrics はメトリクスを設定する
func WithMetrics(m *metrics.Metrics) BookingOption {
	return func(s *BookingService) { s.metrics = m }
}

// WithPendingTTL は仮予約の有効期間を設定する
func WithPendingTTL(ttl time.Duration) BookingOption {
	return func(s *BookingService) {
		if ttl > 0 {
			s.pendingTTL = ttl
		}
	}
}

// WithSweepBatchSize は1回のスイープで処理する最大件数を設定する
func WithSweepBatchSize(n int) BookingOption {
	return func(s *BookingService) {
		if n > 0 {
			s.sweepBatchSize = n
		}
	}
}

func NewBookingService(
	bookingRepo booking.Repository,
	sessionRepo session.Repository,
	eventRepo event.Repository,
	ledger inventory.Ledger,
	policy pricing.Policy,
	opts ...BookingOption,
) *BookingService {
	s := &BookingService{
		bookingRepo:    bookingRepo,
		sessionRepo:    sessionRepo,
		eventRepo:      eventRepo,
		ledger:         ledger,
		policy:         policy,
		now:            time.Now,
		pendingTTL:     DefaultPendingTTL,
		sweepBatchSize: DefaultSweepBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateBookingInput struct {
	UserID         string
	SessionID      string
	Seats          int
	IdempotencyKey string
}

// CreateBooking は座席を確保して仮予約を作成する
// 価格は確保を適用する直前の占有率で算出する
// 同じユーザー・冪等キーで同一内容の予約が既にあれば、それを返す
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	b, replayed, err := s.createBooking(ctx, input)
	s.countBooking(replayed, err)
	if err != nil {
		return nil, err
	}
	if !replayed {
		s.notify(ctx, booking.NotificationCreated, b)
	}
	return b, nil
}

func (s *BookingService) createBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, bool, error) {
	b := booking.NewBooking(input.UserID, input.SessionID, input.Seats, decimal.Zero, input.IdempotencyKey, s.now(), s.pendingTTL)
	if err := b.Validate(); err != nil {
		return nil, false, err
	}

	se, err := s.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, false, session.ErrSessionUnavailable
		}
		return nil, false, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	if _, err := s.eventRepo.GetByID(ctx, se.EventID); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, false, session.ErrSessionUnavailable
		}
		return nil, false, fmt.Errorf("イベント取得に失敗: %w", err)
	}
	if input.Seats > se.Capacity {
		return nil, false, booking.ErrSeatsExceedCapacity
	}

	var (
		created  *booking.Booking
		replayed bool
	)
	err = s.atomically(ctx, "create", se.ID, func(txCtx context.Context, slot *inventory.Slot) error {
		if input.IdempotencyKey != "" {
			existing, err := s.bookingRepo.GetByIdempotencyKey(txCtx, input.UserID, input.IdempotencyKey)
			switch {
			case err == nil:
				if existing.SessionID != se.ID || existing.Seats != input.Seats {
					return booking.ErrIdempotencyKeyConflict
				}
				created, replayed = existing, true
				return nil
			case !errors.Is(err, booking.ErrBookingNotFound):
				return fmt.Errorf("冪等性チェックに失敗: %w", err)
			}
		}

		token, err := slot.Reserve(input.Seats)
		if err != nil {
			return err
		}
		// 価格は確保直前の占有率でここで確定する
		b.PricePerSeat = s.policy.Quote(se.BasePrice, token.Before.Reserved, token.Before.Capacity)
		if err := s.bookingRepo.Create(txCtx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, false, session.ErrSessionUnavailable
		}
		return nil, false, err
	}
	return created, replayed, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// ConfirmBooking は仮予約を確定する。座席数は変わらない
func (s *BookingService) ConfirmBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.transition(ctx, "confirm", id, func(b *booking.Booking, _ *inventory.Slot) error {
		return b.Confirm(s.now())
	})
	if err != nil {
		return nil, err
	}
	s.countTransition("confirmed")
	s.notify(ctx, booking.NotificationConfirmed, b)
	return b, nil
}

// CancelBooking は予約をキャンセルし、座席を一度だけ解放する
func (s *BookingService) CancelBooking(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.transition(ctx, "cancel", id, func(b *booking.Booking, slot *inventory.Slot) error {
		if err := b.Cancel(s.now()); err != nil {
			return err
		}
		return slot.Release(b.Seats)
	})
	if err != nil {
		return nil, err
	}
	s.countTransition("cancelled")
	s.notify(ctx, booking.NotificationCancelled, b)
	return b, nil
}

// transition はセッションのクリティカルセクション内で予約を読み直し、apply を適用して保存する
func (s *BookingService) transition(ctx context.Context, op, id string, apply func(*booking.Booking, *inventory.Slot) error) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *booking.Booking
	err = s.atomically(ctx, op, b.SessionID, func(txCtx context.Context, slot *inventory.Slot) error {
		cur, err := s.bookingRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := apply(cur, slot); err != nil {
			return err
		}
		if err := s.bookingRepo.Update(txCtx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		// セッションごと削除された予約
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}
	return updated, nil
}

// CancelExpiredBookings は有効期限を過ぎた仮予約をキャンセルして座席を解放し、件数を返す
// 各予約はクリティカルセクション内で仮予約のままかを再確認するため、
// 同時に行われたユーザー操作と二重に解放することはない
func (s *BookingService) CancelExpiredBookings(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.bookingRepo.ListExpiredPending(ctx, now, s.sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("期限切れ予約の取得に失敗: %w", err)
	}

	count := 0
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		expired, err := s.expire(ctx, c, now)
		if err != nil {
			logger.Warn("期限切れ予約のキャンセルに失敗",
				zap.String("booking_id", c.ID),
				zap.String("session_id", c.SessionID),
				zap.Error(err),
			)
			continue
		}
		if expired != nil {
			count++
			s.countTransition("expired")
			s.notify(ctx, booking.NotificationExpired, expired)
		}
	}
	return count, nil
}

// expire は対象が期限切れの仮予約のままであれば失効させる。対象外なら nil を返す
func (s *BookingService) expire(ctx context.Context, candidate *booking.Booking, now time.Time) (*booking.Booking, error) {
	var expired *booking.Booking
	err := s.atomically(ctx, "expire", candidate.SessionID, func(txCtx context.Context, slot *inventory.Slot) error {
		cur, err := s.bookingRepo.GetByID(txCtx, candidate.ID)
		if err != nil {
			if errors.Is(err, booking.ErrBookingNotFound) {
				return nil
			}
			return err
		}
		if !cur.IsExpired(now) {
			return nil
		}
		if err := cur.Expire(now); err != nil {
			return err
		}
		if err := slot.Release(cur.Seats); err != nil {
			return err
		}
		if err := s.bookingRepo.Update(txCtx, cur); err != nil {
			return err
		}
		expired = cur
		return nil
	})
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return expired, nil
}

func (s *BookingService) atomically(ctx context.Context, op, sessionID string, fn func(context.Context, *inventory.Slot) error) error {
	start := time.Now()
	err := s.ledger.Atomically(ctx, sessionID, fn)
	if s.metrics != nil {
		s.metrics.CriticalSectionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	return err
}

func (s *BookingService) notify(ctx context.Context, typ booking.NotificationType, b *booking.Booking) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, booking.NewNotification(typ, b, s.now())); err != nil {
		logger.Warn("予約通知の送信に失敗",
			zap.String("type", string(typ)),
			zap.String("booking_id", b.ID),
			zap.Error(err),
		)
	}
}

func (s *BookingService) countBooking(replayed bool, err error) {
	if s.metrics == nil {
		return
	}
	result := metrics.ResultSuccess
	switch {
	case err == nil && replayed:
		result = metrics.ResultReplayed
	case errors.Is(err, errs.ErrExhausted):
		result = metrics.ResultExhausted
	case errors.Is(err, errs.ErrInvalidInput):
		result = metrics.ResultInvalid
	case err != nil:
		result = metrics.ResultError
	}
	s.metrics.BookingsTotal.WithLabelValues(result).Inc()
}

func (s *BookingService) countTransition(transition string) {
	if s.metrics != nil {
		s.metrics.BookingTransitionsTotal.WithLabelValues(transition).Inc()
	}
}

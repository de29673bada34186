package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	redisinfra "github.com/sanosuguru/go-session-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-session-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-session-booking/internal/pkg/metrics"
)

// SweepLockKey は複数インスタンス間でスイープを1つに絞るためのロックキー
const SweepLockKey = "sweep:expired-bookings"

// DefaultSweepInterval は実行間隔に0以下が渡された場合の間隔
const DefaultSweepInterval = 30 * time.Second

// スイープ実行結果のラベル
const (
	sweepSuccess = "success"
	sweepSkipped = "skipped"
	sweepError   = "error"
)

// BookingSweeper は期限切れの仮予約を失効させるインターフェース
type BookingSweeper interface {
	CancelExpiredBookings(ctx context.Context) (int, error)
}

// Locker はスイープの排他に使うロックを取得する
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error)
}

// ExpiredBookingSweeper は期限切れ予約を定期的に失効させるワーカー
type ExpiredBookingSweeper struct {
	bookingService BookingSweeper
	interval       time.Duration
	locker         Locker
	lockTTL        time.Duration
	metrics        *metrics.Metrics
	stopCh         chan struct{}
	doneCh         chan struct{}
}

// SweeperOption は ExpiredBookingSweeper のオプション
type SweeperOption func(*ExpiredBookingSweeper)

// WithLocker は実行ごとに分散ロックを取得するよう設定する
// ロックを取れなかった回はスキップする
func WithLocker(l Locker, ttl time.Duration) SweeperOption {
	return func(s *ExpiredBookingSweeper) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithSweepMetrics はメトリクスを設定する
func WithSweepMetrics(m *metrics.Metrics) SweeperOption {
	return func(s *ExpiredBookingSweeper) { s.metrics = m }
}

// NewExpiredBookingSweeper は新しいスイーパーを作成
// interval が0以下の場合は DefaultSweepInterval を使う
func NewExpiredBookingSweeper(bs BookingSweeper, interval time.Duration, opts ...SweeperOption) *ExpiredBookingSweeper {
	if interval <= 0 {
		logger.Warn("スイープ間隔が不正なため既定値を使用します",
			zap.Duration("interval", interval),
			zap.Duration("default", DefaultSweepInterval),
		)
		interval = DefaultSweepInterval
	}
	s := &ExpiredBookingSweeper{
		bookingService: bs,
		interval:       interval,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lockTTL <= 0 {
		s.lockTTL = interval
	}
	return s
}

// Start はスイーパーを開始
func (s *ExpiredBookingSweeper) Start(ctx context.Context) {
	logger.Info("期限切れ予約スイーパー開始",
		zap.Duration("interval", s.interval),
		zap.Bool("distributed_lock", s.locker != nil),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(s.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ予約スイーパー停止（コンテキストキャンセル）")
			return
		case <-s.stopCh:
			logger.Info("期限切れ予約スイーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop はスイーパーを停止
func (s *ExpiredBookingSweeper) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// sweep は期限切れ予約を1回分処理する
func (s *ExpiredBookingSweeper) sweep(ctx context.Context) {
	log := logger.Get()

	if s.locker != nil {
		lock, err := s.locker.AcquireLock(ctx, SweepLockKey, s.lockTTL)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				log.Debug("他のインスタンスがスイープ中のためスキップ")
				s.count(sweepSkipped)
				return
			}
			log.Error("スイープ用ロックの取得に失敗", zap.Error(err))
			s.count(sweepError)
			return
		}
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn("スイープ用ロックの解放に失敗", zap.Error(err))
			}
		}()
	}

	log.Debug("期限切れ予約のスイープ開始")
	count, err := s.bookingService.CancelExpiredBookings(ctx)
	if err != nil {
		log.Error("期限切れ予約のスイープ失敗", zap.Int("expired", count), zap.Error(err))
		s.count(sweepError)
		return
	}
	s.count(sweepSuccess)

	if count > 0 {
		log.Info("期限切れ予約を失効", zap.Int("count", count))
	} else {
		log.Debug("期限切れ予約なし")
	}
}

func (s *ExpiredBookingSweeper) count(status string) {
	if s.metrics != nil {
		s.metrics.SweepRunsTotal.WithLabelValues(status).Inc()
	}
}

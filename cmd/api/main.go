package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-session-booking/internal/api"
	"github.com/sanosuguru/go-session-booking/internal/api/handler"
	"github.com/sanosuguru/go-session-booking/internal/api/middleware"
	"github.com/sanosuguru/go-session-booking/internal/application"
	"github.com/sanosuguru/go-session-booking/internal/config"
	"github.com/sanosuguru/go-session-booking/internal/domain/booking"
	"github.com/sanosuguru/go-session-booking/internal/domain/event"
	"github.com/sanosuguru/go-session-booking/internal/domain/inventory"
	"github.com/sanosuguru/go-session-booking/internal/domain/pricing"
	"github.com/sanosuguru/go-session-booking/internal/domain/session"
	"github.com/sanosuguru/go-session-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-session-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-session-booking/internal/infrastructure/rabbitmq"
	redisinfra "github.com/sanosuguru/go-session-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-session-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-session-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-session-booking/internal/worker"
)

// store はバックエンドごとのリポジトリと在庫台帳
type store struct {
	events   event.Repository
	sessions session.Repository
	bookings booking.Repository
	ledger   inventory.Ledger
	checks   []handler.HealthCheck
	close    func()
}

func main() {
	// .env は任意。存在しなければ環境変数のみを使う
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := run(cfg); err != nil {
		logger.Fatal("起動に失敗しました", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.Init()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.close()

	policy, err := pricing.NewPolicy(cfg.Pricing.Policy, cfg.Pricing.SurgeThreshold, cfg.Pricing.MaxMultiplier)
	if err != nil {
		return fmt.Errorf("料金ポリシーの設定が不正です: %w", err)
	}

	opts := []application.BookingOption{
		application.WithMetrics(m),
		application.WithPendingTTL(cfg.Booking.PendingTTL),
		application.WithSweepBatchSize(cfg.Booking.SweepBatchSize),
	}
	if cfg.AMQP.URL != "" {
		pub, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer func() { _ = pub.Close() }()
		opts = append(opts, application.WithPublisher(pub))
		logger.Info("予約通知を有効化", zap.String("exchange", cfg.AMQP.Exchange))
	}

	catalogService := application.NewCatalogService(st.events, st.sessions)
	queryService := application.NewQueryService(st.events, st.sessions, st.bookings, st.ledger, policy)
	bookingService := application.NewBookingService(st.bookings, st.sessions, st.events, st.ledger, policy, opts...)

	sweeperOpts := []worker.SweeperOption{worker.WithSweepMetrics(m)}
	if cfg.Redis.Enabled {
		rc, err := redisinfra.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		sweeperOpts = append(sweeperOpts, worker.WithLocker(redisinfra.NewLockManager(rc), cfg.Booking.SweepLockTTL))
		st.checks = append(st.checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisinfra.Ping(ctx, rc) },
		})
	}
	sweeper := worker.NewExpiredBookingSweeper(bookingService, cfg.Booking.SweepInterval, sweeperOpts...)
	go sweeper.Start(ctx)

	e := newServer(cfg, m, handler.Handlers{
		Event:   handler.NewEventHandler(catalogService, queryService),
		Session: handler.NewSessionHandler(catalogService, queryService),
		Booking: handler.NewBookingHandler(bookingService, queryService),
		Health:  handler.NewHealthHandler(st.checks...),
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("サーバーを起動します",
			zap.String("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Backend),
			zap.String("pricing", cfg.Pricing.Policy),
		)
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("サーバー起動エラー: %w", err)
	}

	logger.Info("サーバーをシャットダウンしています...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーシャットダウンエラー: %w", err)
	}

	logger.Info("サーバーが正常にシャットダウンしました")
	return nil
}

func newServer(cfg *config.Config, m *metrics.Metrics, h handler.Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e, cfg.Server.AllowOrigins)
	e.Use(middleware.PrometheusMiddleware(m))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))
	handler.RegisterRoutes(e, h)
	return e
}

// openStore は設定されたバックエンドのリポジトリを組み立てる
func openStore(cfg *config.Config) (*store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		s := memory.NewStore()
		return &store{
			events:   memory.NewEventRepository(s),
			sessions: memory.NewSessionRepository(s),
			bookings: memory.NewBookingRepository(s),
			ledger:   memory.NewLedger(s),
			close:    func() {},
		}, nil
	case config.StorePostgres:
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("未対応のストア: %s", cfg.Store.Backend)
	}
}

func openPostgres(cfg *config.Config) (*store, error) {
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}
	version, err := postgres.RunMigrations(db.DB, cfg.MigrationsPath)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("マイグレーション完了", zap.Uint("version", version))

	return &store{
		events:   postgres.NewEventRepository(db),
		sessions: postgres.NewSessionRepository(db),
		bookings: postgres.NewBookingRepository(db),
		ledger:   postgres.NewLedger(db),
		checks:   []handler.HealthCheck{{Name: "postgres", Check: db.PingContext}},
		close:    func() { _ = db.Close() },
	}, nil
}

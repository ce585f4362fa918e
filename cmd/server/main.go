package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/storefront/config"
	_ "github.com/d60-Lab/storefront/docs"
	"github.com/d60-Lab/storefront/internal/api/handler"
	"github.com/d60-Lab/storefront/internal/api/router"
	"github.com/d60-Lab/storefront/internal/cache"
	"github.com/d60-Lab/storefront/internal/messaging"
	"github.com/d60-Lab/storefront/internal/messaging/kafka"
	"github.com/d60-Lab/storefront/internal/repository"
	"github.com/d60-Lab/storefront/internal/service"
	"github.com/d60-Lab/storefront/internal/storage"
	"github.com/d60-Lab/storefront/pkg/database"
	"github.com/d60-Lab/storefront/pkg/logger"
	"github.com/d60-Lab/storefront/pkg/token"
	"github.com/d60-Lab/storefront/pkg/tracing"
)

// @title Storefront API
// @version 1.0
// @description 商城前台与后台接口
// @BasePath /
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	var catalogCache cache.Cache = cache.Nop{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			catalogCache = cache.NewRedisCache(rdb)
		}
		defer rdb.Close()
	}

	var pub messaging.Publisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		pub = kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix, cfg.Kafka.WriteTimeout)
	}
	defer pub.Close()
	events := service.NewEventDispatcher(pub, 1024, cfg.Kafka.WriteTimeout)
	stopEvents := events.Start(2)

	// repositories
	users := repository.NewUserRepository(db)
	addrs := repository.NewAddressRepository(db)
	categories := repository.NewCategoryRepository(db)
	products := repository.NewProductRepository(db)
	carts := repository.NewCartRepository(db)
	orders := repository.NewOrderRepository(db)
	reviews := repository.NewReviewRepository(db)

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	pricing := cfg.Checkout.Pricing()
	store := storage.NewLocalStore(cfg.Storage.UploadDir, cfg.Storage.URLPrefix)

	auth := service.NewAuthService(users, tokens, service.DefaultHashCost)
	var google *service.GoogleProvider
	if cfg.OAuth.GoogleEnabled() {
		google = service.NewGoogleProvider(cfg.OAuth)
	}

	h := handler.NewHandler(handler.Services{
		Auth:      auth,
		Google:    google,
		Catalog:   service.NewCatalogService(products, categories, reviews, catalogCache),
		Cart:      service.NewCartService(carts, products, pricing),
		Orders:    service.NewOrderService(orders, carts, addrs, pricing, events),
		Payments:  service.NewPaymentService(orders, store, cfg.Payment, cfg.Orders.RestampOnRepeat, events),
		Addresses: service.NewAddressService(addrs),
		Reviews:   service.NewReviewService(reviews, products, catalogCache),
		Admin: service.NewAdminService(service.AdminDeps{
			Orders:          orders,
			Products:        products,
			Categories:      categories,
			Users:           users,
			Cache:           catalogCache,
			Events:          events,
			RestampOnRepeat: cfg.Orders.RestampOnRepeat,
		}),
	}, handler.Options{
		CookieName:   cfg.JWT.CookieName,
		CookieSecure: cfg.JWT.Secure,
		TokenTTL:     cfg.JWT.Expiration,
		BaseURL:      cfg.Server.BaseURL,
		Currency:     cfg.Checkout.Currency,
	})
	if err := handler.RegisterValidators(); err != nil {
		return err
	}

	engine, err := router.New(h, auth, router.Options{
		Mode:       cfg.Server.Mode,
		CookieName: cfg.JWT.CookieName,
		UploadURL:  cfg.Storage.URLPrefix,
		Tracing:    cfg.Tracing,
		RateLimit:  cfg.RateLimit,
		EnableDocs: cfg.Server.Mode != "release",
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", zap.Error(err))
	}
	if err := stopEvents(shutdownCtx); err != nil {
		logger.Warn("event dispatcher did not drain", zap.Error(err))
	}
	published, failed, dropped := events.Stats()
	logger.Info("events flushed",
		zap.Int64("published", published),
		zap.Int64("failed", failed),
		zap.Int64("dropped", dropped),
	)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	return nil
}

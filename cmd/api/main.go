package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lv-papertrade/internal/auth"
	"lv-papertrade/internal/config"
	"lv-papertrade/internal/db"
	"lv-papertrade/internal/events"
	"lv-papertrade/internal/health"
	"lv-papertrade/internal/httpserver"
	"lv-papertrade/internal/ledger"
	"lv-papertrade/internal/portfolio"
	"lv-papertrade/internal/quotes"
	"lv-papertrade/internal/trading"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger, err := config.NewLogger(cfg.AppMode, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	var provider quotes.Provider
	if cfg.QuoteFixedPrices != "" {
		fixed, err := quotes.ParseFixed(cfg.QuoteFixedPrices)
		if err != nil {
			logger.Fatal("parse QUOTE_FIXED_PRICES", zap.Error(err))
		}
		provider = fixed
		logger.Warn("serving fixed quotes", zap.String("prices", cfg.QuoteFixedPrices))
	} else {
		provider = quotes.NewHTTPProvider(quotes.HTTPConfig{
			BaseURL:           cfg.QuoteAPIURL,
			APIKey:            cfg.QuoteAPIKey,
			Timeout:           cfg.QuoteTimeout,
			RequestsPerSecond: cfg.QuoteRPS,
		})
	}

	bus := events.NewBus()
	publishers := events.Fanout{bus}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}()
		publishers = append(publishers, kp)
		logger.Info("publishing trades to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	store := ledger.NewPGStore(pool)
	authSvc := auth.NewService(auth.NewPGUserStore(pool), cfg.JWTIssuer, []byte(cfg.JWTSecret), cfg.JWTTTL, cfg.StartingCash)
	exec := trading.NewExecutor(store, provider, publishers, logger.Named("trading"), cfg.CommitRetries)
	portfolioSvc := portfolio.NewService(store, provider, logger.Named("portfolio"))

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandler:      auth.NewHandler(authSvc, logger.Named("auth")),
		QuoteHandler:     quotes.NewHandler(provider),
		PortfolioHandler: portfolio.NewHandler(portfolioSvc, logger.Named("portfolio")),
		TradingHandler:   trading.NewHandler(exec, store, logger.Named("trading")),
		HealthHandler:    health.NewHandler(pool, time.Now()),
		AuthService:      authSvc,
		TradesWS:         httpserver.NewTradesWS(bus, authSvc, cfg.WebSocketOrigin, logger.Named("ws")),
		RateLimiter:      httpserver.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Origin:           cfg.WebSocketOrigin,
		Logger:           logger.Named("http"),
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("server listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.AppMode)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/app"
	"github.com/meridianbank/meridian/internal/audit"
	"github.com/meridianbank/meridian/internal/auth"
	"github.com/meridianbank/meridian/internal/ledger"
	"github.com/meridianbank/meridian/internal/observability"
	"github.com/meridianbank/meridian/internal/platform/db"
	"github.com/meridianbank/meridian/internal/users"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditSink := audit.NewRecorder(asynqClient, logger)
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, usersRepo, tokens, auditSink, logger)
	authHandler := auth.NewHandler(logger, authService)

	accountsRepo := accounts.NewRepository(pool)
	accountsService := accounts.NewService(accountsRepo, auditSink)
	accountsHandler := accounts.NewHandler(logger, accountsService)

	ledgerRepo := ledger.NewRepository(pool)
	engine := ledger.NewEngine(ledgerRepo, auditSink, metrics, logger)
	query := ledger.NewQuery(ledgerRepo)
	ledgerHandler := ledger.NewHandler(logger, engine, query)

	auditRepo := audit.NewRepository(pool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Tokens:          tokens,
		AuthHandler:     authHandler,
		AccountsHandler: accountsHandler,
		LedgerHandler:   ledgerHandler,
		UsersHandler:    usersHandler,
		AuditHandler:    auditHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

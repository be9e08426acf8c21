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

	"dentalcare_backend/internal/auth"
	"dentalcare_backend/internal/auth/lockout"
	"dentalcare_backend/internal/auth/permission"
	"dentalcare_backend/internal/auth/token"
	apphttp "dentalcare_backend/internal/http"
	"dentalcare_backend/internal/http/router"
	"dentalcare_backend/internal/payments"
	sharedvalidator "dentalcare_backend/internal/shared/validator"
	"dentalcare_backend/internal/treatments"
	"dentalcare_backend/platform/config"
	"dentalcare_backend/platform/db"
	"dentalcare_backend/platform/logger"
	"dentalcare_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	store, closeStore := initLockoutStore(ctx, cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	table, err := permission.LoadTableFile(cfg.GetPermissionsFile())
	if err != nil {
		log.Error("failed to load permission table", "error", err, "path", cfg.GetPermissionsFile())
		panic("failed to load permission table: " + err.Error())
	}
	resolver := permission.NewResolver(table)

	// Shared validator instance for dependency injection
	val := validator.New()
	if err := sharedvalidator.Register(val); err != nil {
		panic("failed to register clinic validation rules: " + err.Error())
	}

	tokens := token.NewManager(cfg.GetJWTAccessSecret(), cfg.GetAccessTokenTTL(), nil)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule, err := auth.NewModule(pool, cfg, tokens, store, resolver, val, log)
	if err != nil {
		log.Error("failed to initialize auth module", "error", err)
		panic("failed to initialize auth module: " + err.Error())
	}
	paymentsModule := payments.NewModule(val, time.Now)
	treatmentsModule := treatments.NewModule()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:        cfg,
		Logger:        log,
		Health:        db.NewPoolAdapter(pool),
		Authenticator: authModule.Authenticator(),
		Permissions:   resolver,
		Modules: []apphttp.Module{
			authModule,
			paymentsModule,
			treatmentsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func initLockoutStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (lockout.Store, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; sign-in lockout disabled")
		return lockout.NoopStore{}, nil
	}

	client, err := lockout.NewRedisClient(ctx, cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to connect to redis; sign-in lockout disabled", "error", err)
		return lockout.NoopStore{}, nil
	}

	log.Info("sign-in lockout enabled", "maxAttempts", cfg.GetLoginMaxAttempts(), "window", cfg.GetLoginLockoutWindow())
	return lockout.NewRedisStore(client, cfg.GetLoginLockoutWindow()), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

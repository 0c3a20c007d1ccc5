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

	"golang.org/x/crypto/bcrypt"

	"tenders/db"
	"tenders/db/migrations"
	"tenders/internal/auth"
	"tenders/internal/config"
	"tenders/internal/handlers"
	"tenders/internal/logger"
	"tenders/internal/metrics"
	"tenders/internal/objectstore"
	"tenders/internal/service"
)

const (
	serviceName     = "tenders-api"
	shutdownTimeout = 10 * time.Second
	startupTimeout  = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tenders-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel, serviceName)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	dbConn, err := db.Connect(startCtx, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := migrations.Run(startCtx, dbConn.DB); err != nil {
		return err
	}
	log.Info("migrations applied")

	m := metrics.New()
	svc := service.New(service.Deps{
		Store:   db.NewStorage(dbConn, cfg.Database.QueryTimeout),
		Logos:   objectstore.NewSupabaseStore(cfg.Storage.URL, cfg.Storage.ServiceKey, cfg.Storage.Bucket),
		Hasher:  auth.NewBcryptHasher(bcrypt.DefaultCost),
		Tokens:  auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL),
		Logger:  log,
		Metrics: m,
	})

	h := handlers.NewHandler(svc, log, cfg.PublicAPIURL)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		AuthLimiter:    handlers.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst),
		Metrics:        m,
		TrustedProxies: cfg.TrustedProxies,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.String("address", cfg.ServerAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

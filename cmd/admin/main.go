package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ecocycle.app/storefront/internal/admin/dashboard"
	"ecocycle.app/storefront/internal/admin/httpserver"
	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/config"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

const adminCookieName = "ecocycle_admin"

func main() {
	var envFile string
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file read below the process environment")
	flag.Parse()

	cfg, err := config.Load(config.WithEnvFile(envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("admin")

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise admin console", zap.Error(err))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.With(zap.String("addr", srv.Addr))
	go func() {
		serverLogger.Info("admin console listening",
			zap.String("base_path", cfg.Admin.BasePath),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.String("environment", cfg.Admin.EnvironmentLabel),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newServer(cfg config.Config, logger *zap.Logger) (*http.Server, error) {
	client, err := backend.New(backend.Options{
		BaseURL:     cfg.Backend.BaseURL,
		Timeout:     cfg.Backend.Timeout,
		TokenScheme: cfg.Backend.TokenScheme,
		OrdersPath:  cfg.Backend.OrdersPath,
	})
	if err != nil {
		return nil, err
	}
	sessions, err := session.NewManager(session.Config{
		CookieName:   adminCookieName,
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  30 * time.Minute,
		Lifetime:     8 * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	resolver := media.NewResolver(media.Options{
		Placeholder: cfg.Images.Placeholder,
		LocalPrefix: cfg.Images.LocalPrefix,
		MediaPrefix: cfg.Images.MediaPrefix,
	})

	return httpserver.New(httpserver.Config{
		Address:          cfg.Admin.Addr,
		BasePath:         cfg.Admin.BasePath,
		Environment:      cfg.Admin.EnvironmentLabel,
		PublicDir:        cfg.Web.PublicDir,
		Sessions:         sessions,
		SecureCookies:    cfg.IsProduction(),
		Accounts:         client,
		DashboardService: dashboard.NewHTTPService(client, resolver),
		ImageChecker: &media.Checker{
			Root:     cfg.Web.PublicDir,
			Resolver: resolver,
			Client:   &http.Client{Timeout: 5 * time.Second},
			Limiter:  rate.NewLimiter(rate.Limit(8), 4),
		},
		Resolver: resolver,
		Logger:   logger,
	}), nil
}

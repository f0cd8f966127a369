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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/config"
	"ecocycle.app/storefront/internal/media"
	mw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

// app carries the storefront dependencies shared by every handler.
type app struct {
	backend      *backend.Client
	resolver     media.Resolver
	sessions     *session.Manager
	validate     *validator.Validate
	logger       *zap.Logger
	templatesDir string
	publicDir    string
	// devMode reparses templates on every request.
	devMode     bool
	environment string
	production  bool
	templates   *templateSet
}

func main() {
	var (
		envFile string
		dev     bool
	)
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file read below the process environment")
	flag.BoolVar(&dev, "dev", os.Getenv("ECOCYCLE_WEB_DEV") != "", "reparse templates on each request")
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
	logger := baseLogger.Named("web")

	a, err := newApp(cfg, logger, dev)
	if err != nil {
		logger.Fatal("failed to initialise storefront", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Web.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.With(zap.String("addr", srv.Addr))
	go func() {
		serverLogger.Info("storefront listening",
			zap.String("backend", a.backend.BaseURL()),
			zap.String("environment", cfg.Environment),
			zap.Bool("dev_mode", a.devMode),
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

func newApp(cfg config.Config, logger *zap.Logger, dev bool) (*app, error) {
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
		HashKey:      cfg.Session.HashKey,
		BlockKey:     cfg.Session.BlockKey,
		CookieSecure: cfg.Session.Secure,
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		backend: client,
		resolver: media.NewResolver(media.Options{
			Placeholder: cfg.Images.Placeholder,
			LocalPrefix: cfg.Images.LocalPrefix,
			MediaPrefix: cfg.Images.MediaPrefix,
		}),
		sessions:     sessions,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger,
		templatesDir: cfg.Web.TemplatesDir,
		publicDir:    cfg.Web.PublicDir,
		devMode:      dev,
		environment:  cfg.Environment,
		production:   cfg.IsProduction(),
	}
	if !a.devMode {
		set, err := parseTemplates(a.templatesDir, a.funcMap())
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		a.templates = set
	}
	return a, nil
}

// routes builds the storefront router.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(a.logger))
	r.Use(observability.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/assets/*", mw.AssetsWithCache(a.publicDir+"/assets", "/assets"))
	r.Handle(a.resolver.LocalPrefix+"*", mw.ImagesWithFallback(a.publicDir+a.resolver.LocalPrefix, a.resolver.LocalPrefix, a.resolver.PlaceholderURL()))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(mw.Locale)
		r.Use(mw.Session(a.sessions))
		r.Use(mw.CSRF(a.production))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/products", http.StatusFound)
		})
		r.Get("/products", a.ProductsHandler)
		r.Get("/products/{id}", a.ProductDetailHandler)
		r.Get("/order-confirmation", a.OrderConfirmationHandler)

		r.Get("/login", a.LoginFormHandler)
		r.Post("/login", a.LoginSubmitHandler)
		r.Post("/logout", a.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireLogin)
			r.Get("/cart", a.CartHandler)
			r.Post("/cart/items", a.AddToCartHandler)
			r.Post("/cart/items/{itemID}/remove", a.RemoveCartItemHandler)
			r.Get("/account/orders", a.OrdersHandler)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.renderNotFound(w, r)
	})
	return r
}

// Package httpserver assembles the admin console router.
package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/admin/dashboard"
	custommw "ecocycle.app/storefront/internal/admin/httpserver/middleware"
	"ecocycle.app/storefront/internal/admin/httpserver/ui"
	"ecocycle.app/storefront/internal/media"
	webmw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

// Config defines runtime options for the admin HTTP server.
type Config struct {
	Address     string
	BasePath    string
	LoginPath   string
	Environment string
	PublicDir   string

	Sessions      *session.Manager
	SecureCookies bool
	Authenticator custommw.Authenticator
	Accounts      AccountBackend

	DashboardService dashboard.Service
	ImageChecker     *media.Checker
	Resolver         media.Resolver

	Logger *zap.Logger
}

// New constructs the admin HTTP server.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Sessions == nil {
		panic("httpserver: session manager is required")
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.RequestLogger(logger))
	router.Use(observability.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	publicDir := firstNonEmpty(cfg.PublicDir, "public")
	imagesPrefix := cfg.Resolver.LocalPrefix
	if imagesPrefix == "" {
		imagesPrefix = media.LocalPrefix
	}
	router.Handle("/assets/*", webmw.AssetsWithCache(publicDir+"/assets", "/assets"))
	router.Handle(imagesPrefix+"*", webmw.ImagesWithFallback(publicDir+imagesPrefix, imagesPrefix, cfg.Resolver.PlaceholderURL()))

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.SessionAuthenticator()
	}

	checker := cfg.ImageChecker
	if checker == nil {
		checker = &media.Checker{Root: publicDir, Resolver: cfg.Resolver}
	}

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		Sessions:      cfg.Sessions,
		SecureCookies: cfg.SecureCookies,
		Auth:          newAuthHandlers(cfg.Accounts, basePath, loginPath),
		UI: ui.NewHandlers(ui.Dependencies{
			DashboardService: cfg.DashboardService,
			ImageChecker:     checker,
			LoginPath:        loginPath,
		}),
	})

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      70 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	LoginPath     string
	Environment   string
	Sessions      *session.Manager
	SecureCookies bool
	Auth          *authHandlers
	UI            *ui.Handlers
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	routes := func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(webmw.Locale)
		r.Use(custommw.NoStore())
		r.Use(webmw.Session(opts.Sessions))
		r.Use(webmw.CSRF(opts.SecureCookies))
		r.Use(custommw.Environment(opts.Environment))

		r.Get("/login", opts.Auth.LoginForm)
		r.Post("/login", opts.Auth.LoginSubmit)
		r.Post("/logout", opts.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get("/", opts.UI.Dashboard)
			RegisterFragment(r, "/fragments/{tab}", opts.UI.TabFragment)
			r.Get("/diagnostics/images", opts.UI.ImageDiagnostics)
		})
	}

	if base == "/" {
		router.Group(routes)
		return
	}
	router.Route(base, routes)
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	return custommw.NormalizeBase(p)
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// RegisterFragment mounts an htmx-only GET route.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

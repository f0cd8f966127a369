package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"ecocycle.app/storefront/internal/admin/dashboard"
	"ecocycle.app/storefront/internal/admin/httpserver"
	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/session"
)

// Passwords accepted by StaticAccounts.
const (
	AdminPassword    = "admin-pass"
	CustomerPassword = "customer-pass"
)

// StaticAccounts signs in "admin" as an administrator and anyone else as a customer.
type StaticAccounts struct{}

// Login implements httpserver.AccountBackend.
func (StaticAccounts) Login(_ context.Context, creds backend.Credentials) (backend.Session, error) {
	switch {
	case creds.Username == "admin" && creds.Password == AdminPassword:
		return backend.Session{Token: "admin-token", UserID: "1", Username: "admin", Role: "admin"}, nil
	case creds.Password == CustomerPassword:
		return backend.Session{Token: "customer-token", UserID: "2", Username: strings.TrimSpace(creds.Username), Role: "customer"}, nil
	default:
		return backend.Session{}, fmt.Errorf("%w: Invalid credentials", backend.ErrUnauthorized)
	}
}

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithDashboardService wires a custom dashboard service implementation.
func WithDashboardService(service dashboard.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.DashboardService = service
	}
}

// WithAccounts overrides the login backend.
func WithAccounts(accounts httpserver.AccountBackend) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Accounts = accounts
	}
}

// WithImageChecker overrides the image checker.
func WithImageChecker(checker *media.Checker) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.ImageChecker = checker
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := session.NewManager(session.Config{
		CookieName: "ecocycle_admin",
		HashKey:    []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := httpserver.Config{
		Address:          ":0",
		BasePath:         "/admin",
		Environment:      "Test",
		PublicDir:        "../../../public",
		Sessions:         sessions,
		Accounts:         StaticAccounts{},
		DashboardService: dashboard.NewStaticService(),
		Resolver:         media.DefaultResolver,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

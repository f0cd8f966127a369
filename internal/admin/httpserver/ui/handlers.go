// Package ui serves the admin console pages and htmx fragments.
package ui

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/admin/dashboard"
	custommw "ecocycle.app/storefront/internal/admin/httpserver/middleware"
	"ecocycle.app/storefront/internal/admin/templates"
	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/handlers"
	"ecocycle.app/storefront/internal/media"
	webmw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	DashboardService dashboard.Service
	ImageChecker     *media.Checker
	LoginPath        string
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	dashboard dashboard.Service
	checker   *media.Checker
	loginPath string
}

// NewHandlers wires the UI handler set.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.DashboardService
	if service == nil {
		service = dashboard.NewStaticService()
	}
	checker := deps.ImageChecker
	if checker == nil {
		checker = &media.Checker{Root: "public"}
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handlers{dashboard: service, checker: checker, loginPath: loginPath}
}

// Dashboard renders the console with the tab named by ?tab=.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	tab, ok := dashboard.ParseTab(r.URL.Query().Get("tab"))
	if !ok {
		http.Redirect(w, r, tabURL(r.Context(), dashboard.TabOverview), http.StatusFound)
		return
	}
	data, status, done := h.load(w, r, tab)
	if done {
		return
	}
	templ.Handler(templates.DashboardPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

// TabFragment renders only the tab panel for htmx swaps.
func (h *Handlers) TabFragment(w http.ResponseWriter, r *http.Request) {
	tab, ok := dashboard.ParseTab(chi.URLParam(r, "tab"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, status, done := h.load(w, r, tab)
	if done {
		return
	}
	templ.Handler(templates.TabPanel(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

// ImageDiagnostics probes the known product images, the placeholder and any ?path= values.
func (h *Handlers) ImageDiagnostics(w http.ResponseWriter, r *http.Request) {
	var extra []string
	for _, value := range r.URL.Query()["path"] {
		if value = strings.TrimSpace(value); value != "" {
			extra = append(extra, value)
		}
	}
	inputs := append(append([]string(nil), media.KnownProductImages...), extra...)

	data := templates.DiagnosticsData{Chrome: h.chrome(r, "Image diagnostics"), Extra: extra}
	status := http.StatusOK
	results, err := h.checker.Check(r.Context(), inputs)
	if err != nil {
		observability.FromContext(r.Context()).Error("image diagnostics failed", zap.Error(err))
		status = http.StatusInternalServerError
		data.Error = &templates.Notice{
			Title:     "Check interrupted",
			Message:   "The image check could not finish.",
			ActionURL: r.URL.RequestURI(),
			Action:    "Run again",
		}
	}
	data.Results = results
	templ.Handler(templates.DiagnosticsPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

// load fetches the snapshot for tab. done reports that a response was already written.
func (h *Handlers) load(w http.ResponseWriter, r *http.Request, tab dashboard.Tab) (templates.DashboardData, int, bool) {
	user, _ := custommw.UserFromContext(r.Context())
	token := ""
	if user != nil {
		token = user.Token
	}
	data := templates.DashboardData{
		Chrome: h.chrome(r, tab.Label()),
		Lang:   webmw.LangFromContext(r.Context()),
	}

	snap, err := dashboard.Load(r.Context(), h.dashboard, token, tab)
	if err == nil {
		data.Snapshot = snap
		return data, http.StatusOK, false
	}

	if backend.IsAuthError(err) {
		observability.FromContext(r.Context()).Info("admin token rejected", zap.Error(err))
		custommw.Unauthorized(w, r, h.loginPath, custommw.ReasonTokenExpired)
		return data, 0, true
	}

	logger := observability.FromContext(r.Context())
	if errors.Is(err, context.Canceled) {
		logger.Debug("dashboard load cancelled", zap.Error(err))
	} else {
		logger.Error("dashboard load failed", zap.String("tab", string(tab)), zap.Error(err))
	}
	panel := handlers.NewErrorPanel(err, tabURL(r.Context(), tab), h.loginPath)
	data.Snapshot = dashboard.Snapshot{Tab: tab}
	data.Error = &templates.Notice{
		Title:     panel.Title,
		Message:   panel.Message,
		ActionURL: panel.ActionURL,
		Action:    panel.Action,
	}
	if errors.Is(err, backend.ErrNotFound) {
		data.Error.Message = "The admin endpoint for this tab is not available."
		data.Error.ActionURL = tabURL(r.Context(), dashboard.TabOverview)
		data.Error.Action = "Back to overview"
	}
	return data, panel.Status, false
}

func (h *Handlers) chrome(r *http.Request, title string) templates.Chrome {
	chrome := templates.Chrome{Title: title, CSRFToken: webmw.CSRFToken(r)}
	if user, ok := custommw.UserFromContext(r.Context()); ok {
		chrome.UserName = firstNonEmpty(user.Username, user.Email, user.ID)
	}
	if flash := webmw.GetSession(r).PopFlash(); flash != nil {
		chrome.Flash = flash.Message
	}
	return chrome
}

func tabURL(ctx context.Context, tab dashboard.Tab) string {
	return custommw.BasePathFromContext(ctx) + "?tab=" + string(tab)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	custommw "ecocycle.app/storefront/internal/admin/httpserver/middleware"
	"ecocycle.app/storefront/internal/admin/templates"
	"ecocycle.app/storefront/internal/backend"
	webmw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

// AccountBackend exchanges credentials for a backend token.
type AccountBackend interface {
	Login(ctx context.Context, creds backend.Credentials) (backend.Session, error)
}

const (
	msgNotAdmin    = "This account does not have admin access."
	msgExpired     = "Your session has expired. Please sign in again."
	msgLoggedOut   = "You have been signed out."
	msgBadRequest  = "Enter your username and password."
	msgBadLogin    = "Invalid username or password."
	msgUnavailable = "We couldn't reach the EcoCycle service. Please try again."
)

type authHandlers struct {
	accounts  AccountBackend
	basePath  string
	loginPath string
}

func newAuthHandlers(accounts AccountBackend, basePath, loginPath string) *authHandlers {
	if accounts == nil {
		panic("auth: account backend is required")
	}
	return &authHandlers{
		accounts:  accounts,
		basePath:  basePath,
		loginPath: loginPath,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	sess := webmw.GetSession(r)
	next := webmw.SafeNext(r.URL.Query().Get("next"), h.basePath)
	if sess.Authenticated() && sess.User().IsAdmin() {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}

	data := h.loginData(r)
	data.Next = next
	switch r.URL.Query().Get("reason") {
	case custommw.ReasonTokenExpired:
		data.Notice = msgExpired
	case custommw.ReasonNotAdmin:
		data.Notice = msgNotAdmin
	}
	if r.URL.Query().Get("status") == "logged_out" {
		data.Notice = msgLoggedOut
	}
	h.render(w, r, data, http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	creds := backend.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	data := h.loginData(r)
	data.Username = creds.Username
	data.Next = webmw.SafeNext(r.PostFormValue("next"), h.basePath)

	result, err := h.accounts.Login(r.Context(), creds)
	if err != nil {
		status := http.StatusBadGateway
		data.Error = msgUnavailable
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			status = http.StatusBadRequest
			data.Error = msgBadRequest
		case errors.Is(err, backend.ErrUnauthorized):
			status = http.StatusUnauthorized
			data.Error = msgBadLogin
		default:
			observability.FromContext(r.Context()).Warn("admin login failed", zap.Error(err))
		}
		h.render(w, r, data, status)
		return
	}
	if !result.IsAdmin() {
		observability.FromContext(r.Context()).Info("admin login refused",
			zap.String("user_id", result.UserID),
			zap.String("role", result.Role),
		)
		data.Error = msgNotAdmin
		h.render(w, r, data, http.StatusForbidden)
		return
	}

	webmw.GetSession(r).SignIn(result.Token, session.User{
		ID:       result.UserID,
		Username: result.Username,
		Email:    result.Email,
		Role:     result.Role,
	})
	observability.FromContext(r.Context()).Info("admin signed in", zap.String("user_id", result.UserID))

	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", data.Next)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, data.Next, http.StatusSeeOther)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	webmw.GetSession(r).SignOut()

	redirect := h.loginPath + "?status=logged_out"
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

func (h *authHandlers) loginData(r *http.Request) templates.LoginData {
	chrome := templates.Chrome{CSRFToken: webmw.CSRFToken(r)}
	if flash := webmw.GetSession(r).PopFlash(); flash != nil {
		chrome.Flash = flash.Message
	}
	return templates.LoginData{Chrome: chrome}
}

func (h *authHandlers) render(w http.ResponseWriter, r *http.Request, data templates.LoginData, status int) {
	templ.Handler(templates.LoginPage(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

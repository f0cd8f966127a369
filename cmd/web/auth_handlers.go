package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/handlers"
	mw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

// LoginFormHandler renders the sign-in form.
func (a *app) LoginFormHandler(w http.ResponseWriter, r *http.Request) {
	next := mw.SafeNext(r.URL.Query().Get("next"), "/products")
	if mw.GetSession(r).Authenticated() {
		http.Redirect(w, r, next, http.StatusFound)
		return
	}
	vm := a.newPage(r, "Sign in")
	vm.Login = &handlers.LoginView{Next: next}
	a.renderPage(w, r, http.StatusOK, "login", vm)
}

// LoginSubmitHandler exchanges credentials for a backend token.
func (a *app) LoginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	creds := backend.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	next := mw.SafeNext(r.PostFormValue("next"), "/products")

	result, err := a.backend.Login(r.Context(), creds)
	if err != nil {
		status := http.StatusBadGateway
		message := "We couldn't reach the EcoCycle service. Please try again."
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			status = http.StatusBadRequest
			message = "Enter your username and password."
		case errors.Is(err, backend.ErrUnauthorized):
			status = http.StatusUnauthorized
			message = "Invalid username or password."
		default:
			observability.FromContext(r.Context()).Warn("login failed", zap.Error(err))
		}
		vm := a.newPage(r, "Sign in")
		vm.Login = &handlers.LoginView{Username: creds.Username, Next: next, Error: message}
		a.renderPage(w, r, status, "login", vm)
		return
	}

	sess := mw.GetSession(r)
	sess.SignIn(result.Token, session.User{
		ID:       result.UserID,
		Username: result.Username,
		Email:    result.Email,
		Role:     result.Role,
	})
	sess.AddFlash("success", "Welcome back, "+result.Username+"!")
	observability.FromContext(r.Context()).Info("customer signed in", zap.String("user_id", result.UserID))
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// LogoutHandler forgets the backend token.
func (a *app) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	sess.SignOut()
	sess.AddFlash("info", "You have been signed out.")
	http.Redirect(w, r, "/products", http.StatusSeeOther)
}

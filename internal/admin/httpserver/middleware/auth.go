package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	webmw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// User represents the signed-in administrator.
type User struct {
	ID       string
	Username string
	Email    string
	Role     string
	Token    string
}

// Authenticator resolves the current request into an administrator.
type Authenticator interface {
	Authenticate(r *http.Request) (*User, error)
}

var (
	// ErrUnauthorized is returned when authentication fails.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the account is not an administrator.
	ErrForbidden = errors.New("forbidden")
)

// AuthError contains reason codes for failed authentication attempts.
type AuthError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError constructs an AuthError with the provided reason.
func NewAuthError(reason string, err error) error {
	return &AuthError{Reason: reason, Err: err}
}

const (
	// ReasonMissingToken indicates a request without a backend token.
	ReasonMissingToken = "missing_token"
	// ReasonNotAdmin indicates a signed-in account without the admin role.
	ReasonNotAdmin = "not_admin"
	// ReasonTokenExpired indicates the backend rejected the stored token.
	ReasonTokenExpired = "expired"
)

// SessionAuthenticator accepts sessions holding a backend token for an admin account.
func SessionAuthenticator() Authenticator {
	return sessionAuthenticator{}
}

type sessionAuthenticator struct{}

func (sessionAuthenticator) Authenticate(r *http.Request) (*User, error) {
	sess := webmw.GetSession(r)
	if !sess.Authenticated() {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}
	u := sess.User()
	if !u.IsAdmin() {
		return nil, NewAuthError(ReasonNotAdmin, ErrForbidden)
	}
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
		Token:    sess.Token(),
	}, nil
}

// Auth attaches the administrator to the context or sends the visitor to loginPath.
func Auth(authenticator Authenticator, loginPath string) func(http.Handler) http.Handler {
	if authenticator == nil {
		authenticator = SessionAuthenticator()
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authenticator.Authenticate(r)
			if err != nil || user == nil {
				reason := ReasonMissingToken
				var authErr *AuthError
				if errors.As(err, &authErr) && authErr.Reason != "" {
					reason = authErr.Reason
				}
				if reason != ReasonMissingToken {
					observability.FromContext(r.Context()).Info("admin auth failure",
						zap.String("reason", reason),
						zap.Error(err),
					)
				}
				handleUnauthorized(w, r, loginPath, reason)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the authenticated user if present.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// Unauthorized signs the session out and redirects to the login page with
// reason. Handlers call it when the backend rejects the stored token.
func Unauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	webmw.GetSession(r).SignOut()
	handleUnauthorized(w, r, loginPath, reason)
}

func handleUnauthorized(w http.ResponseWriter, r *http.Request, loginPath, reason string) {
	target := loginTarget(r, loginPath, reason)
	if IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func loginTarget(r *http.Request, loginPath, reason string) string {
	values := url.Values{}
	if reason != "" && reason != ReasonMissingToken {
		values.Set("reason", reason)
	}
	if r.Method == http.MethodGet && !IsHTMXRequest(r.Context()) {
		if next := r.URL.RequestURI(); next != "" && next != BasePathFromContext(r.Context()) && !strings.HasPrefix(next, loginPath) {
			values.Set("next", next)
		}
	}
	if len(values) == 0 {
		return loginPath
	}
	return loginPath + "?" + values.Encode()
}

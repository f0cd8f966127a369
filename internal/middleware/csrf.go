package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	// CSRFFormField is the hidden input name forms use to echo the token.
	CSRFFormField = "csrf_token"
	// CSRFHeader is the header htmx requests use to echo the token.
	CSRFHeader = "X-CSRF-Token"
)

// CSRF issues a double-submit cookie tied to the session token and verifies
// that modifying requests echo it in the X-CSRF-Token header or the csrf_token
// form field.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r)
			token, err := sess.EnsureCSRFToken()
			if err != nil {
				writeError(w, r, http.StatusInternalServerError, "unable to issue CSRF token")
				return
			}

			if c, err := r.Cookie(csrfCookieName); err != nil || c.Value != token {
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(24 * time.Hour),
				})
			}

			if !isSafeMethod(r.Method) {
				submitted := r.Header.Get(CSRFHeader)
				if submitted == "" {
					submitted = r.PostFormValue(CSRFFormField)
				}
				if !tokensMatch(submitted, token) {
					writeError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
				if c, err := r.Cookie(csrfCookieName); err != nil || !tokensMatch(c.Value, token) {
					writeError(w, r, http.StatusForbidden, "invalid CSRF token")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token templates embed in forms.
func CSRFToken(r *http.Request) string {
	token, _ := GetSession(r).EnsureCSRFToken()
	return token
}

func tokensMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func isSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

package middleware

import (
	"net/http"
	"net/url"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// RequireLogin redirects visitors without a backend token to the login page,
// remembering where they were headed. htmx requests get a 401 with HX-Redirect.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSession(r).Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		target := LoginURL(r)
		if IsHTMX(r.Context()) {
			w.Header().Set("HX-Redirect", target)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	})
}

// LoginURL builds the login link that returns to the current page afterwards.
func LoginURL(r *http.Request) string {
	next := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		next = r.Header.Get("Referer")
		if u, err := url.Parse(next); err == nil && u.Host == r.Host {
			next = u.RequestURI()
		} else {
			next = ""
		}
	}
	if next == "" || next == LoginPath {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local path, fallback otherwise.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	return next
}

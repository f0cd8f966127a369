package middleware

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/observability"
	"ecocycle.app/storefront/internal/session"
)

// ExpiredFlash is queued when an idle or expired session is replaced.
const ExpiredFlash = "Your session has expired. Please sign in again."

// Session loads or initializes a session and stores it in request context.
// The cookie is re-issued just before the first byte of every response so the
// idle window slides with activity.
func Session(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := mgr.Load(r)
			if errors.Is(err, session.ErrExpired) {
				sess.AddFlash("info", ExpiredFlash)
			}

			sw := &sessionWriter{ResponseWriter: w}
			sw.beforeWrite = func() {
				if err := mgr.Save(w, sess); err != nil {
					observability.FromContext(r.Context()).Error("session save failed", zap.Error(err))
				}
			}

			next.ServeHTTP(sw, r.WithContext(WithSession(r.Context(), sess)))
			sw.flushHeaders()
		})
	}
}

// GetSession returns the request session. Requests that bypassed the Session
// middleware get a detached empty session.
func GetSession(r *http.Request) *session.Session {
	if sess := SessionFromContext(r.Context()); sess != nil {
		return sess
	}
	return &session.Session{}
}

type sessionWriter struct {
	http.ResponseWriter
	beforeWrite func()
	done        bool
}

func (w *sessionWriter) flushHeaders() {
	if w.done {
		return
	}
	w.done = true
	if w.beforeWrite != nil {
		w.beforeWrite()
	}
}

func (w *sessionWriter) WriteHeader(status int) {
	w.flushHeaders()
	w.ResponseWriter.WriteHeader(status)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flushHeaders()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Flush() {
	w.flushHeaders()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

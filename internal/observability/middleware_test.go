package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerLogsCompletion(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	router := chi.NewRouter()
	router.Use(RequestLogger(logger))
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "inside handler", entries[0].Message)

	done := entries[1]
	require.Equal(t, "request completed", done.Message)
	require.Equal(t, zap.WarnLevel, done.Level)
	fields := done.ContextMap()
	require.Equal(t, "/products/{id}", fields["route"])
	require.EqualValues(t, http.StatusNotFound, fields["status"])
	require.EqualValues(t, len("missing"), fields["bytes"])
}

func TestRecovererAnswers500(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	handler := RequestLogger(zap.New(core))(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	require.Equal(t, 1, logs.FilterMessage("request completed").Len())
}

func TestFromContextDefaultsToNoop(t *testing.T) {
	require.NotNil(t, FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	webmw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/session"
)

func withSession(r *http.Request, sess *session.Session) *http.Request {
	return r.WithContext(webmw.WithSession(r.Context(), sess))
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuthRedirectsAnonymousVisitors(t *testing.T) {
	t.Parallel()

	handler := RequestInfoMiddleware("/admin")(HTMX()(Auth(nil, "/admin/login")(http.HandlerFunc(okHandler))))

	req := withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), &session.Session{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/admin/login", rec.Header().Get("Location"))

	req = withSession(httptest.NewRequest(http.MethodGet, "/admin?tab=users", nil), &session.Session{})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "/admin/login?next=%2Fadmin%3Ftab%3Dusers", rec.Header().Get("Location"))
}

func TestAuthRejectsCustomers(t *testing.T) {
	t.Parallel()

	sess := &session.Session{}
	sess.SignIn("tok", session.User{ID: "2", Username: "nok", Role: "customer"})

	handler := HTMX()(Auth(SessionAuthenticator(), "/admin/login")(http.HandlerFunc(okHandler)))
	req := withSession(httptest.NewRequest(http.MethodGet, "/admin/fragments/users", nil), sess)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "/admin/login?reason=not_admin", rec.Header().Get("HX-Redirect"))
}

func TestAuthAttachesAdmin(t *testing.T) {
	t.Parallel()

	sess := &session.Session{}
	sess.SignIn("tok", session.User{ID: "1", Username: "root", Role: "Admin"})

	var got *User
	handler := Auth(nil, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), sess))

	require.NotNil(t, got)
	require.Equal(t, "tok", got.Token)
	require.Equal(t, "root", got.Username)
}

func TestUnauthorizedSignsOut(t *testing.T) {
	t.Parallel()

	sess := &session.Session{}
	sess.SignIn("tok", session.User{ID: "1", Role: "admin"})

	req := withSession(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), sess)
	rec := httptest.NewRecorder()
	Unauthorized(rec, req, "/admin/login", ReasonTokenExpired)

	require.False(t, sess.Authenticated())
	require.Equal(t, "/admin/login?reason=expired", rec.Header().Get("Location"))
}

func TestRequireHTMX(t *testing.T) {
	t.Parallel()

	handler := HTMX()(RequireHTMX()(http.HandlerFunc(okHandler)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/fragments/orders", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/fragments/orders", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "tab-panel")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Values("Vary"), "HX-Request")
}

func TestHTMXInfoMirrorsStorefrontFlag(t *testing.T) {
	t.Parallel()

	var info HTMXInfo
	var shared bool
	handler := HTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = HTMXInfoFromContext(r.Context())
		shared = webmw.IsHTMX(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "tab-panel")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, info.IsHTMX)
	require.Equal(t, "tab-panel", info.Target)
	require.True(t, shared)
}

func TestEnvironmentAndRequestInfo(t *testing.T) {
	t.Parallel()

	var env, base, path string
	handler := Environment(" ")(RequestInfoMiddleware("admin/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env = EnvironmentFromContext(r.Context())
		base = BasePathFromContext(r.Context())
		path = RequestPathFromContext(r.Context())
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/diagnostics/images", nil))

	require.Equal(t, "Development", env)
	require.Equal(t, "/admin", base)
	require.Equal(t, "/admin/diagnostics/images", path)
	require.Equal(t, "/", NormalizeBase(""))
}

func TestNoStore(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NoStore()(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

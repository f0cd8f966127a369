package httpserver_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"ecocycle.app/storefront/internal/admin/dashboard"
	"ecocycle.app/storefront/internal/admin/testutil"
	"ecocycle.app/storefront/internal/backend"
)

type adminBrowser struct {
	t      *testing.T
	ts     *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, ts *httptest.Server) *adminBrowser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &adminBrowser{
		t:  t,
		ts: ts,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *adminBrowser) do(req *http.Request) (*http.Response, []byte) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, body
}

func (b *adminBrowser) get(path string, headers ...string) (*http.Response, []byte) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.ts.URL+path, nil)
	require.NoError(b.t, err)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return b.do(req)
}

func (b *adminBrowser) csrf() string {
	u, err := url.Parse(b.ts.URL)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	return ""
}

func (b *adminBrowser) post(path string, form url.Values) (*http.Response, []byte) {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get("csrf_token") == "" {
		form.Set("csrf_token", b.csrf())
	}
	req, err := http.NewRequest(http.MethodPost, b.ts.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *adminBrowser) login(username, password string) *http.Response {
	b.t.Helper()
	b.get("/admin/login")
	resp, _ := b.post("/admin/login", url.Values{"username": {username}, "password": {password}})
	return resp
}

func TestDashboardRedirectsWithoutAuth(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	resp, _ := b.get("/admin")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestLoginPageRenders(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	resp, body := b.get("/admin/login?reason=expired")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Sign in | EcoCycle Admin", doc.Find("title").Text())
	require.Equal(t, "Test", doc.Find(`[data-testid="environment"]`).Text())
	require.Contains(t, doc.Find(`[data-testid="login-notice"]`).Text(), "expired")
	require.NotEmpty(t, doc.Find(`input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestLoginRefusesCustomers(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.get("/admin/login")
	resp, body := b.post("/admin/login", url.Values{"username": {"nok"}, "password": {testutil.CustomerPassword}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Contains(t, testutil.ParseHTML(t, body).Find(".form-error").Text(), "admin access")

	resp, _ = b.get("/admin")
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.get("/admin/login")
	resp, body := b.post("/admin/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Invalid username or password.", doc.Find(".form-error").Text())
	require.Equal(t, "admin", doc.Find(`input[name="username"]`).AttrOr("value", ""))
}

func TestLoginRequiresCSRF(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.get("/admin/login")
	resp, _ := b.post("/admin/login", url.Values{"username": {"admin"}, "password": {testutil.AdminPassword}, "csrf_token": {"forged"}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDashboardOverviewForAdmin(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	resp := b.login("admin", testutil.AdminPassword)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	resp, body := b.get("/admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Overview | EcoCycle Admin", doc.Find("title").Text())
	require.Equal(t, "Admin Dashboard", doc.Find("h1").First().Text())
	require.Equal(t, 6, doc.Find(".stat-card").Length())
	require.Equal(t, 5, doc.Find(".recent-orders li").Length())
	require.Equal(t, "12345678", doc.Find(".recent-orders li").First().AttrOr("data-order-id", ""))
	require.Equal(t, "admin", doc.Find(".account-name").Text())
	require.Equal(t, "/admin/fragments/orders", doc.Find(`.tabs a[data-tab="orders"]`).AttrOr("hx-get", ""))
}

func TestDashboardTabs(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.login("admin", testutil.AdminPassword)

	cases := map[string]struct {
		selector string
		rows     int
	}{
		"products": {selector: ".products-table tbody tr", rows: 7},
		"orders":   {selector: ".orders-table tbody tr", rows: 6},
		"users":    {selector: ".users-table tbody tr", rows: 5},
	}
	for tab, tc := range cases {
		resp, body := b.get("/admin?tab=" + tab)
		require.Equal(t, http.StatusOK, resp.StatusCode, tab)
		doc := testutil.ParseHTML(t, body)
		require.Equal(t, tc.rows, doc.Find(tc.selector).Length(), tab)
		require.Equal(t, tab, doc.Find(".tabs a.active").AttrOr("data-tab", ""), tab)
	}

	resp, _ := b.get("/admin?tab=billing")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin?tab=overview", resp.Header.Get("Location"))
}

func TestFragmentsRequireHTMX(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.login("admin", testutil.AdminPassword)

	resp, _ := b.get("/admin/fragments/users")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := b.get("/admin/fragments/users", "HX-Request", "true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.False(t, strings.Contains(string(body), "<html"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	require.NoError(t, err)
	require.Equal(t, "users", doc.Find("#tab-panel").AttrOr("data-tab", ""))
	require.Equal(t, 5, doc.Find(".users-table tbody tr").Length())

	resp, _ = b.get("/admin/fragments/billing", "HX-Request", "true")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFragmentWithoutSessionAsksForRedirect(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	resp, _ := b.get("/admin/fragments/orders", "HX-Request", "true")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("HX-Redirect"))
}

func TestRejectedTokenSignsOut(t *testing.T) {
	t.Parallel()

	svc := dashboard.NewStaticService()
	svc.Err = &backend.StatusError{Op: "admin_stats", StatusCode: http.StatusUnauthorized, Message: "Invalid token."}
	b := newBrowser(t, testutil.NewServer(t, testutil.WithDashboardService(svc)))
	b.login("admin", testutil.AdminPassword)

	resp, _ := b.get("/admin")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login?reason=expired", resp.Header.Get("Location"))

	resp, _ = b.get("/admin")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestBackendFailureShowsRetry(t *testing.T) {
	t.Parallel()

	svc := dashboard.NewStaticService()
	svc.Err = errors.New("dial tcp: connection refused")
	b := newBrowser(t, testutil.NewServer(t, testutil.WithDashboardService(svc)))
	b.login("admin", testutil.AdminPassword)

	resp, body := b.get("/admin?tab=orders")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "/admin?tab=orders", doc.Find(`[data-testid="error-action"]`).AttrOr("href", ""))
	require.Equal(t, 0, doc.Find(".orders-table").Length())
}

func TestImageDiagnostics(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.login("admin", testutil.AdminPassword)

	resp, body := b.get("/admin/diagnostics/images?path=" + url.QueryEscape("/media/products/missing.png"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := testutil.ParseHTML(t, body)
	rows := doc.Find(".diagnostics-table tbody tr")
	require.Equal(t, 14, rows.Length())
	require.Equal(t, "true", rows.First().AttrOr("data-available", ""))
	require.Equal(t, "/images/missing.png", rows.Last().Find("td").Eq(1).Text())
	require.Equal(t, "false", rows.Last().AttrOr("data-available", ""))
	require.Equal(t, "1 of 14 images loaded", doc.Find(`[data-testid="diagnostics-summary"]`).Text())
}

func TestLogout(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	b.login("admin", testutil.AdminPassword)
	b.get("/admin")

	resp, _ := b.post("/admin/logout", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/login?status=logged_out", resp.Header.Get("Location"))

	resp, _ = b.get("/admin")
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	b := newBrowser(t, testutil.NewServer(t))
	resp, body := b.get("/healthz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

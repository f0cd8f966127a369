package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/session"
)

// newTestRouter builds the storefront against a fake backend served by handler.
func newTestRouter(t *testing.T, handler http.HandlerFunc) http.Handler {
	t.Helper()
	api := httptest.NewServer(handler)
	t.Cleanup(api.Close)

	client, err := backend.New(backend.Options{BaseURL: api.URL, HTTPClient: api.Client()})
	require.NoError(t, err)
	sessions, err := session.NewManager(session.Config{HashKey: []byte("0123456789abcdef0123456789abcdef")})
	require.NoError(t, err)

	a := &app{
		backend:      client,
		resolver:     media.DefaultResolver,
		sessions:     sessions,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       zap.NewNop(),
		templatesDir: "../../templates",
		publicDir:    "../../public",
		devMode:      true,
		environment:  "dev",
	}
	_, err = parseTemplates(a.templatesDir, a.funcMap())
	require.NoError(t, err, "parseTemplates failed")
	return a.routes()
}

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, handler http.Handler) *browser {
	return &browser{t: t, handler: handler, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, form url.Values) *httptest.ResponseRecorder {
	if token, ok := b.cookies["csrf_token"]; ok {
		form.Set("csrf_token", token.Value)
	}
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// login signs the browser in through the real form flow.
func (b *browser) login() {
	b.t.Helper()
	rec := b.get("/login")
	require.Equal(b.t, http.StatusOK, rec.Code)
	rec = b.post("/login", url.Values{"username": {"mali"}, "password": {"pw"}, "next": {"/account/orders"}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	// Signing in rotates the CSRF token; a signed-in GET of /login bounces
	// straight back and picks up the new cookie without consuming the flash.
	rec = b.get("/login")
	require.Equal(b.t, http.StatusFound, rec.Code)
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

type fakeBackend struct {
	products      string
	productStatus int
	orders        string
	ordersStatus  int
	cartPosts     atomic.Int32
	lastAuth      atomic.Value
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		f.lastAuth.Store(auth)
	}
	switch {
	case r.URL.Path == "/products/":
		if f.productStatus != 0 {
			w.WriteHeader(f.productStatus)
		}
		_, _ = io.WriteString(w, f.products)
	case r.URL.Path == "/products/1/":
		_, _ = io.WriteString(w, `{"id":1,"name":"Bamboo Brush","price":"59.00","stock":2,"description":"Soft *bristles* <script>x()</script>","image":"/media/products/brush.png"}`)
	case strings.HasPrefix(r.URL.Path, "/products/"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Product not found"}`)
	case r.URL.Path == "/login/":
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["password"] != "pw" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"tok-123","user_id":12,"username":"mali"}`)
	case r.URL.Path == "/orders/":
		if f.ordersStatus != 0 {
			w.WriteHeader(f.ordersStatus)
		}
		_, _ = io.WriteString(w, f.orders)
	case r.URL.Path == "/add-to-cart/":
		f.cartPosts.Add(1)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"ok"}`)
	case r.URL.Path == "/cart/12/":
		_, _ = io.WriteString(w, `{"items":[{"id":3,"name":"Tote","price":"50","quantity":2,"available":9,"imageUrl":"tote.png"}]}`)
	case r.URL.Path == "/order/55/confirmation/":
		_, _ = io.WriteString(w, `{"orderId":55,"items":[{"name":"Tote","quantity":1,"price":"50","imageUrl":"/media/a/tote.png"}],"payment":{"method":"card","last4":"4242"},"total":"53.50","estimatedDelivery":"3-5 business days"}`)
	default:
		http.NotFound(w, r)
	}
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestRootRedirectsToProducts(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/products", rec.Header().Get("Location"))
}

func TestProductsEmptyObjectRendersEmptyState(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{products: `{}`}).handle)
	rec := newBrowser(t, srv).get("/products")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	require.Equal(t, 1, doc.Find("[data-testid=empty-products]").Length())
	require.Contains(t, doc.Find("[data-testid=empty-products] h2").Text(), "No products found")
	require.Equal(t, 0, doc.Find(".product-card").Length())
	require.Contains(t, doc.Find("[data-testid=payload-diagnostic] pre").Text(), `"products"`)
}

func TestProductsRenderResolvedImages(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{products: `{"products":[
		{"id":1,"name":"Bamboo Brush","price":"59","stock":2,"category":"Bath","image":"/media/products/brush.png"},
		{"id":2,"name":"Steel Straw","price":35,"stock":0,"category":"Kitchen","image":"https://cdn.example.com/straw.png"},
		{"id":3,"name":"Jar","price":80,"stock":1,"category":"Kitchen"}
	]}`}).handle)
	rec := newBrowser(t, srv).get("/products")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	cards := doc.Find(".product-card")
	require.Equal(t, 3, cards.Length())

	var srcs []string
	cards.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		srcs = append(srcs, src)
		fallback, _ := s.Attr("data-fallback-src")
		require.Equal(t, media.PlaceholderPath, fallback)
	})
	require.Equal(t, []string{"/images/brush.png", "https://cdn.example.com/straw.png", media.PlaceholderPath}, srcs)
	require.Contains(t, cards.Eq(0).Find(".price").Text(), "฿59.00")
	require.Equal(t, 0, doc.Find("[data-testid=payload-diagnostic]").Length())

	rec = newBrowser(t, srv).get("/products?q=STRAW")
	require.Equal(t, 1, parseHTML(t, rec).Find(".product-card").Length())

	rec = newBrowser(t, srv).get("/products?category=Kitchen")
	require.Equal(t, 2, parseHTML(t, rec).Find(".product-card").Length())
}

func TestProductsHTMXReturnsGridFragment(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{products: `[{"id":1,"name":"Jar","price":1,"stock":1}]`}).handle)
	req := httptest.NewRequest(http.MethodGet, "/products?q=jar", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "product-grid")
	rec := newBrowser(t, srv).do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "<html")
	require.Equal(t, 1, parseHTML(t, rec).Find("#product-grid .product-card").Length())
}

func TestProductsBackendFailureShowsRetryLink(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{products: `oops`, productStatus: http.StatusInternalServerError}).handle)
	rec := newBrowser(t, srv).get("/products?q=tote")
	require.Equal(t, http.StatusBadGateway, rec.Code)

	doc := parseHTML(t, rec)
	href, ok := doc.Find("[data-testid=error-action]").Attr("href")
	require.True(t, ok)
	require.Equal(t, "/products?q=tote", href)
}

func TestProductDetail(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	rec := newBrowser(t, srv).get("/products/1")
	require.Equal(t, http.StatusOK, rec.Code)

	doc := parseHTML(t, rec)
	require.Equal(t, "Bamboo Brush", strings.TrimSpace(doc.Find(".product-detail h1").Text()))
	require.Equal(t, 2, doc.Find("select[name=quantity] option").Length())
	require.Equal(t, 1, doc.Find(".description em").Length())
	require.Equal(t, 0, doc.Find(".description script").Length())
	src, _ := doc.Find(".product-detail-image img").Attr("src")
	require.Equal(t, "/images/brush.png", src)

	rec = newBrowser(t, srv).get("/products/99")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedPagesRedirectToLogin(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	for _, path := range []string{"/cart", "/account/orders"} {
		rec := newBrowser(t, srv).get(path)
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/login?next="+url.QueryEscape(path), rec.Header().Get("Location"))
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	b := newBrowser(t, srv)
	b.get("/login")
	rec := b.post("/login", url.Values{"username": {"mali"}, "password": {"nope"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, parseHTML(t, rec).Find(".form-error").Text(), "Invalid username or password.")
}

func TestOrdersAfterLogin(t *testing.T) {
	fake := &fakeBackend{orders: `{"orders":[
		{"id":7,"date":"2024-05-01","status":"shipped","total":"250","items":2},
		{"id":8,"date":"2024-05-03","status":"cancelled","total":"99","items":1}
	]}`}
	srv := newTestRouter(t, fake.handle)
	b := newBrowser(t, srv)
	b.login()

	rec := b.get("/account/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Token tok-123", fake.lastAuth.Load())

	doc := parseHTML(t, rec)
	rows := doc.Find(".orders-table tbody tr")
	require.Equal(t, 2, rows.Length())
	require.Equal(t, "ECO - 8", strings.TrimSpace(rows.Eq(0).Find(".order-id").Text()))
	require.True(t, rows.Eq(0).Find(".badge-red").Length() == 1)
	href, _ := rows.Eq(1).Find("a").Attr("href")
	require.Equal(t, "/order-confirmation?orderId=7", href)
	require.Contains(t, doc.Find(".flash-success").Text(), "Welcome back, mali!")
}

func TestOrdersEmptyAndUnexpectedShape(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{orders: `{"results":[]}`}).handle)
	b := newBrowser(t, srv)
	b.login()

	rec := b.get("/account/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	require.Contains(t, doc.Find("[data-testid=empty-orders] h2").Text(), "No orders yet")
	require.Contains(t, doc.Find("[data-testid=payload-diagnostic] pre").Text(), "results")
}

func TestOrdersRejectedTokenSignsOut(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{orders: `{"detail":"Invalid token."}`, ordersStatus: http.StatusUnauthorized}).handle)
	b := newBrowser(t, srv)
	b.login()

	rec := b.get("/account/orders")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, parseHTML(t, rec).Find(".error-panel h1").Text(), "Session expired")

	rec = b.get("/account/orders")
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestAddToCartFlow(t *testing.T) {
	fake := &fakeBackend{}
	srv := newTestRouter(t, fake.handle)
	b := newBrowser(t, srv)
	b.login()

	rec := b.post("/cart/items", url.Values{"product_id": {"1"}, "quantity": {"2"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/products/1", rec.Header().Get("Location"))
	require.EqualValues(t, 1, fake.cartPosts.Load())

	rec = b.get("/products/1")
	require.Contains(t, parseHTML(t, rec).Find(".flash-success").Text(), "Item added to cart successfully!")

	rec = b.post("/cart/items", url.Values{"product_id": {"1"}, "quantity": {"0"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.EqualValues(t, 1, fake.cartPosts.Load())

	rec = b.get("/cart")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	require.Equal(t, "฿100.00", strings.TrimSpace(doc.Find("[data-testid=cart-subtotal]").Text()))
	src, _ := doc.Find(".cart-table img").Attr("src")
	require.Equal(t, "/images/tote.png", src)
}

func TestAddToCartRequiresCSRF(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	b := newBrowser(t, srv)
	b.login()

	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader("product_id=1&quantity=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := b.do(req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderConfirmation(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)

	rec := newBrowser(t, srv).get("/order-confirmation")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, parseHTML(t, rec).Find(".error-panel p").Text(), "Missing orderId in URL.")

	rec = newBrowser(t, srv).get("/order-confirmation?orderId=55")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := parseHTML(t, rec)
	require.Contains(t, doc.Find(".card-header h2").Text(), "ECO - 55")
	require.Equal(t, "•••• 4242", doc.Find("[data-testid=card-number]").Text())
	require.Equal(t, "฿53.50", doc.Find("[data-testid=confirmation-total]").Text())
	src, _ := doc.Find(".confirmation-items img").Attr("src")
	require.Equal(t, "/images/tote.png", src)
}

func TestImagesFallBackToPlaceholder(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/does-not-exist.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "placeholder", rec.Header().Get("X-Image-Fallback"))
	require.Contains(t, rec.Body.String(), "<svg")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	srv := newTestRouter(t, (&fakeBackend{}).handle)
	rec := newBrowser(t, srv).get("/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, parseHTML(t, rec).Find(".error-panel h1").Text(), "Page not found")
}

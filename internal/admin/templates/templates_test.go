package templates

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"ecocycle.app/storefront/internal/admin/dashboard"
	"ecocycle.app/storefront/internal/media"
)

func renderDoc(t *testing.T, data DashboardData) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, DashboardPage(data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestDashboardOverviewEscapesAndCounts(t *testing.T) {
	t.Parallel()

	snap, err := dashboard.Load(context.Background(), dashboard.NewStaticService(), "", dashboard.TabOverview)
	require.NoError(t, err)
	snap.RecentOrders[0].Customer = `<script>alert(1)</script>`

	doc := renderDoc(t, DashboardData{Chrome: Chrome{UserName: "root", CSRFToken: "tok"}, Snapshot: snap, Lang: "en"})

	require.Equal(t, "Dashboard | EcoCycle Admin", doc.Find("title").Text())
	require.Equal(t, 6, doc.Find(".stat-card").Length())
	require.Equal(t, "6", doc.Find(`[data-stat="total-orders"] .stat-value`).Text())
	require.Equal(t, 5, doc.Find(".recent-orders li").Length())
	require.Equal(t, 0, doc.Find("#"+TabPanelID+" script").Length())
	require.Contains(t, doc.Find(".recent-orders li").First().Text(), "<script>")
	require.Equal(t, "overview", doc.Find(".tabs a.active").AttrOr("data-tab", ""))
	require.Equal(t, "/fragments/users", doc.Find(`.tabs a[data-tab="users"]`).AttrOr("hx-get", ""))
	require.Equal(t, "tok", doc.Find(`form input[name="csrf_token"]`).AttrOr("value", ""))
}

func TestTabPanelShowsNotice(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := TabPanel(DashboardData{
		Snapshot: dashboard.Snapshot{Tab: dashboard.TabOrders},
		Error:    &Notice{Title: "Backend unavailable", Message: "boom", ActionURL: "/admin?tab=orders", Action: "Try again"},
	}).Render(context.Background(), &buf)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	require.Equal(t, "/admin?tab=orders", doc.Find(`[data-testid="error-action"]`).AttrOr("href", ""))
	require.Equal(t, 0, doc.Find("table").Length())
}

func TestDiagnosticsPageSummary(t *testing.T) {
	t.Parallel()

	data := DiagnosticsData{Results: []media.CheckResult{
		{Input: "/images/PD01.jpg", URL: "/images/PD01.jpg", Source: "local", Available: true},
		{Input: "/media/x.png", URL: "/images/x.png", Source: "local", Error: "not found"},
	}}
	var buf bytes.Buffer
	require.NoError(t, DiagnosticsPage(data).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, "1 of 2 images loaded", doc.Find(`[data-testid="diagnostics-summary"]`).Text())
	require.Equal(t, 1, doc.Find(`tr[data-available="false"]`).Length())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestRenderReturnsWriteErrors(t *testing.T) {
	t.Parallel()

	err := Text("hello").Render(context.Background(), failingWriter{})
	require.Error(t, err)
}

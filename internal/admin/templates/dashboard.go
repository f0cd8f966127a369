package templates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"ecocycle.app/storefront/internal/admin/dashboard"
	"ecocycle.app/storefront/internal/admin/httpserver/middleware"
	"ecocycle.app/storefront/internal/format"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/status"
)

// TabPanelID is the element htmx swaps when switching tabs.
const TabPanelID = "tab-panel"

// Notice is an inline failure message with a follow-up link.
type Notice struct {
	Title     string
	Message   string
	ActionURL string
	Action    string
}

// DashboardData drives the dashboard page and its tab fragments.
type DashboardData struct {
	Chrome   Chrome
	Snapshot dashboard.Snapshot
	Error    *Notice
	Lang     string
}

// DashboardPage renders the full console page with the active tab.
func DashboardPage(data DashboardData) templ.Component {
	if data.Chrome.Title == "" {
		data.Chrome.Title = "Dashboard"
	}
	return Layout(data.Chrome, component(func(ctx context.Context, p *printer) {
		base := middleware.BasePathFromContext(ctx)
		p.raw(`<div class="page-head"><h1>Admin Dashboard</h1><p>Manage your EcoCycle store</p></div>`)
		p.raw(`<nav class="tabs" role="tablist">`)
		for _, tab := range dashboard.Tabs {
			pageURL := base + "?tab=" + url.QueryEscape(string(tab))
			p.raw(`<a role="tab" data-tab="`)
			p.text(string(tab))
			p.raw(`" href="`)
			p.url(pageURL)
			p.raw(`" hx-get="`)
			p.url(joinPath(base, "fragments/"+string(tab)))
			p.raw(`" hx-target="#` + TabPanelID + `" hx-push-url="`)
			p.url(pageURL)
			p.raw(`"`)
			if tab == data.Snapshot.Tab {
				p.raw(` class="active" aria-selected="true"`)
			}
			p.raw(`>`)
			p.text(tab.Label())
			p.raw(`</a>`)
		}
		p.raw(`</nav>`)
		p.component(ctx, TabPanel(data))
	}))
}

// TabPanel renders the active tab body. It is also the htmx fragment.
func TabPanel(data DashboardData) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<section id="` + TabPanelID + `" data-tab="`)
		p.text(string(data.Snapshot.Tab))
		p.raw(`">`)
		switch {
		case data.Error != nil:
			p.component(ctx, noticePanel(*data.Error))
		case data.Snapshot.Tab == dashboard.TabProducts:
			p.component(ctx, productsTable(data.Snapshot.Products, data.Lang))
		case data.Snapshot.Tab == dashboard.TabOrders:
			p.component(ctx, ordersTable(data.Snapshot.Orders, data.Lang))
		case data.Snapshot.Tab == dashboard.TabUsers:
			p.component(ctx, usersTable(data.Snapshot.Users, data.Lang))
		default:
			p.component(ctx, overview(data.Snapshot, data.Lang))
		}
		p.raw(`</section>`)
	})
}

func noticePanel(n Notice) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<div class="error-panel" role="alert"><h2>`)
		p.text(n.Title)
		p.raw(`</h2><p>`)
		p.text(n.Message)
		p.raw(`</p>`)
		if n.ActionURL != "" {
			p.raw(`<a class="button" data-testid="error-action" href="`)
			p.url(n.ActionURL)
			p.raw(`">`)
			p.text(n.Action)
			p.raw(`</a>`)
		}
		p.raw(`</div>`)
	})
}

type statCard struct {
	id, label, value, tone string
}

func overview(snap dashboard.Snapshot, lang string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		s := snap.Stats
		cards := []statCard{
			{"total-sales", "Total Sales", format.Baht(s.TotalSales, lang), "green"},
			{"total-orders", "Total Orders", format.Number(s.TotalOrders, lang), "blue"},
			{"total-products", "Products", format.Number(s.TotalProducts, lang), "gray"},
			{"total-users", "Users", format.Number(s.TotalUsers, lang), "purple"},
			{"pending-orders", "Pending Orders", format.Number(s.PendingOrders, lang), "yellow"},
			{"low-stock", "Low Stock", format.Number(s.LowStockProducts, lang), "red"},
		}
		p.raw(`<div class="stat-grid">`)
		for _, c := range cards {
			p.raw(`<div class="stat-card" data-stat="`)
			p.text(c.id)
			p.raw(`"><p class="stat-label">`)
			p.text(c.label)
			p.raw(`</p><p class="stat-value tone-`)
			p.text(c.tone)
			p.raw(`">`)
			p.text(c.value)
			p.raw(`</p></div>`)
		}
		p.raw(`</div><div class="overview-columns"><div class="panel"><h2>Recent Orders</h2>`)
		if len(snap.RecentOrders) == 0 {
			p.raw(`<p class="empty">No orders yet.</p>`)
		}
		p.raw(`<ul class="recent-orders">`)
		for _, o := range snap.RecentOrders {
			p.raw(`<li data-order-id="`)
			p.text(o.ID)
			p.raw(`"><span class="order-id">#`)
			p.text(o.ID)
			p.raw(`</span> <span>`)
			p.text(o.Customer)
			p.raw(`</span> <span>`)
			p.text(format.Date(o.Date, lang))
			p.raw(`</span> `)
			p.component(ctx, badge(status.Order(o.Status)))
			p.raw(` <span class="amount">`)
			p.text(format.Baht(o.Total, lang))
			p.raw(`</span></li>`)
		}
		p.raw(`</ul></div><div class="panel"><h2>Low Stock Products</h2>`)
		if len(snap.LowStock) == 0 {
			p.raw(`<p class="empty">Stock levels look healthy.</p>`)
		}
		p.raw(`<ul class="low-stock">`)
		for _, prod := range snap.LowStock {
			p.raw(`<li><span>`)
			p.text(prod.Name)
			p.raw(`</span> <span class="muted">`)
			p.text(prod.Category)
			p.raw(`</span> `)
			if prod.Stock == 0 {
				p.raw(`<span class="badge badge-red">Out of Stock</span>`)
			} else {
				p.raw(`<span class="badge badge-yellow">`)
				p.text(strconv.Itoa(prod.Stock) + " left")
				p.raw(`</span>`)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul></div></div>`)
	})
}

func badge(b status.Badge) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<span class="badge badge-`)
		p.text(b.Tone)
		p.raw(`">`)
		p.text(b.Label)
		p.raw(`</span>`)
	})
}

func tableHead(p *printer, class string, headers ...string) {
	p.raw(`<table class="data-table `)
	p.text(class)
	p.raw(`"><thead><tr>`)
	for _, h := range headers {
		p.raw(`<th>`)
		p.text(h)
		p.raw(`</th>`)
	}
	p.raw(`</tr></thead><tbody>`)
}

func cell(p *printer, value string) {
	p.raw(`<td>`)
	p.text(value)
	p.raw(`</td>`)
}

func emptyRow(p *printer, cols int, message string) {
	p.raw(`<tr class="empty"><td colspan="`)
	p.text(strconv.Itoa(cols))
	p.raw(`">`)
	p.text(message)
	p.raw(`</td></tr>`)
}

func productsTable(products []dashboard.Product, lang string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		tableHead(p, "products-table", "Product", "Category", "Price", "Stock", "Status")
		if len(products) == 0 {
			emptyRow(p, 5, "No products found.")
		}
		for _, prod := range products {
			p.raw(`<tr><td class="product-cell"><img loading="lazy" alt="" width="40" height="40" src="`)
			p.url(prod.Image)
			p.raw(`" data-fallback-src="`)
			p.url(media.PlaceholderPath)
			p.raw(`"> `)
			p.text(prod.Name)
			p.raw(`</td>`)
			cell(p, prod.Category)
			cell(p, format.Baht(prod.Price, lang))
			cell(p, format.Number(prod.Stock, lang))
			p.raw(`<td>`)
			p.component(ctx, badge(status.Product(prod.Status)))
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

func ordersTable(orders []dashboard.Order, lang string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		tableHead(p, "orders-table", "Order", "Customer", "Date", "Items", "Total", "Status")
		if len(orders) == 0 {
			emptyRow(p, 6, "No orders yet.")
		}
		for _, o := range orders {
			p.raw(`<tr>`)
			cell(p, "#"+o.ID)
			cell(p, o.Customer)
			cell(p, format.Date(o.Date, lang))
			cell(p, strconv.Itoa(o.Items))
			cell(p, format.Baht(o.Total, lang))
			p.raw(`<td>`)
			p.component(ctx, badge(status.Order(o.Status)))
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

func usersTable(users []dashboard.User, lang string) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		tableHead(p, "users-table", "Name", "Email", "Role", "Last login")
		if len(users) == 0 {
			emptyRow(p, 4, "No users found.")
		}
		for _, u := range users {
			p.raw(`<tr>`)
			cell(p, u.Name)
			cell(p, u.Email)
			p.raw(`<td>`)
			p.component(ctx, badge(status.Role(u.Role)))
			p.raw(`</td>`)
			cell(p, format.Date(u.LastLogin, lang))
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

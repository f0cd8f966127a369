// Package dashboard loads the data behind the admin console tabs.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotConfigured indicates the dashboard service dependency has not been provided.
var ErrNotConfigured = errors.New("dashboard service not configured")

// Service exposes data retrieval for the dashboard tabs.
type Service interface {
	// FetchStats returns the overview counters. Counters the backend leaves out are zero.
	FetchStats(ctx context.Context, token string) (Stats, error)
	// FetchProducts returns every catalogue entry, drafts included.
	FetchProducts(ctx context.Context, token string) ([]Product, error)
	// FetchOrders returns every order.
	FetchOrders(ctx context.Context, token string) ([]Order, error)
	// FetchUsers returns every account.
	FetchUsers(ctx context.Context, token string) ([]User, error)
}

// Tab identifies a dashboard section.
type Tab string

const (
	TabOverview Tab = "overview"
	TabProducts Tab = "products"
	TabOrders   Tab = "orders"
	TabUsers    Tab = "users"
)

// Tabs lists the sections in display order.
var Tabs = []Tab{TabOverview, TabProducts, TabOrders, TabUsers}

// ParseTab maps a query value to a tab, defaulting to the overview.
func ParseTab(value string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(value))) {
	case "", TabOverview:
		return TabOverview, true
	case TabProducts:
		return TabProducts, true
	case TabOrders:
		return TabOrders, true
	case TabUsers:
		return TabUsers, true
	default:
		return TabOverview, false
	}
}

// Label returns the tab caption.
func (t Tab) Label() string {
	switch t {
	case TabProducts:
		return "Products"
	case TabOrders:
		return "Orders"
	case TabUsers:
		return "Users"
	default:
		return "Overview"
	}
}

// Stats are the six overview counters.
type Stats struct {
	TotalSales       float64
	TotalOrders      int
	TotalProducts    int
	TotalUsers       int
	PendingOrders    int
	LowStockProducts int
}

// Product is a row of the products tab.
type Product struct {
	ID       string
	Name     string
	Category string
	Price    float64
	Stock    int
	Status   string
	Image    string
}

// Order is a row of the orders tab.
type Order struct {
	ID       string
	Customer string
	Date     string
	PlacedAt time.Time
	Total    float64
	Status   string
	Items    int
}

// User is a row of the users tab.
type User struct {
	ID        string
	Name      string
	Email     string
	Role      string
	LastLogin string
}

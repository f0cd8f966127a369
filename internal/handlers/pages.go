// Package handlers holds the storefront page data and the view models built from backend records.
package handlers

import (
	"ecocycle.app/storefront/internal/nav"
	"ecocycle.app/storefront/internal/session"
)

// PageData is the root object every storefront template receives.
type PageData struct {
	Title       string
	Lang        string
	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	User        *session.User
	CSRFToken   string
	Flash       *session.Flash
	Placeholder string
	Environment string

	// Diagnostic is the normalizer note for the current page; templates only
	// show it when Debug is set, which is never the case in production.
	Diagnostic string
	Debug      bool
	Error      *ErrorPanel

	// Optional per-page view model payloads
	Products     *ProductsView
	Product      *ProductDetail
	Cart         *CartView
	Orders       *OrdersView
	Confirmation *ConfirmationView
	Login        *LoginView
}

// SignedIn reports whether the page is rendered for a signed-in customer.
func (p PageData) SignedIn() bool {
	return p.User != nil
}

// LoginView backs the login form.
type LoginView struct {
	Username string
	Next     string
	Error    string
}

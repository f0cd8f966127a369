package main

import (
	"net/http"
	"strings"

	"ecocycle.app/storefront/internal/handlers"
	mw "ecocycle.app/storefront/internal/middleware"
)

// OrdersHandler renders the account order history.
func (a *app) OrdersHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "My orders")
	list, err := a.backend.AccountOrders(r.Context(), mw.GetSession(r).Token())
	if err != nil {
		a.renderBackendError(w, r, vm, err)
		return
	}
	vm.Orders = handlers.BuildOrdersView(list.Items, vm.Lang)
	vm.Diagnostic = list.Diagnostic
	a.renderPage(w, r, http.StatusOK, "orders", vm)
}

// OrderConfirmationHandler renders the summary for ?orderId=.
func (a *app) OrderConfirmationHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "Order confirmation")
	orderID := strings.TrimSpace(r.URL.Query().Get("orderId"))
	if orderID == "" {
		vm.Error = &handlers.ErrorPanel{
			Status:    http.StatusBadRequest,
			Title:     "Order not specified",
			Message:   "Missing orderId in URL.",
			ActionURL: "/account/orders",
			Action:    "View your orders",
		}
		a.renderPage(w, r, http.StatusBadRequest, "error", vm)
		return
	}

	conf, err := a.backend.OrderConfirmation(r.Context(), mw.GetSession(r).Token(), orderID)
	if err != nil {
		a.renderBackendError(w, r, vm, err)
		return
	}
	vm.Confirmation = handlers.BuildConfirmationView(conf, orderID, a.resolver, vm.Lang)
	a.renderPage(w, r, http.StatusOK, "confirmation", vm)
}

package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/handlers"
	mw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/nav"
)

const productGridTarget = "product-grid"

// ProductsHandler renders the product grid, filtered by ?q= and ?category=.
func (a *app) ProductsHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "Products")
	list, err := a.backend.ListProducts(r.Context())
	if err != nil {
		a.renderBackendError(w, r, vm, err)
		return
	}

	q := r.URL.Query()
	vm.Products = handlers.BuildProductsView(list.Items, a.resolver, q.Get("q"), q.Get("category"), vm.Lang)
	vm.Diagnostic = list.Diagnostic

	if mw.IsHTMX(r.Context()) && r.Header.Get("HX-Target") == productGridTarget {
		a.renderTemplate(w, r, http.StatusOK, "product_grid", vm)
		return
	}
	a.renderPage(w, r, http.StatusOK, "products", vm)
}

// ProductDetailHandler renders a single product with the add-to-cart form.
func (a *app) ProductDetailHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "Product")
	id := chi.URLParam(r, "id")
	product, err := a.backend.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			vm.Title = "Product not found"
		}
		a.renderBackendError(w, r, vm, err)
		return
	}

	vm.Product = handlers.BuildProductDetail(product, a.resolver, vm.Lang)
	vm.Title = vm.Product.Name
	vm.Breadcrumbs = nav.Breadcrumbs(r.URL.Path, vm.Product.Name)
	a.renderPage(w, r, http.StatusOK, "product", vm)
}

package main

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/handlers"
	mw "ecocycle.app/storefront/internal/middleware"
	"ecocycle.app/storefront/internal/observability"
)

// addToCartForm is the add-to-cart form submission.
type addToCartForm struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"required,min=1"`
}

// CartHandler renders the signed-in customer's cart.
func (a *app) CartHandler(w http.ResponseWriter, r *http.Request) {
	vm := a.newPage(r, "Your cart")
	sess := mw.GetSession(r)
	list, err := a.backend.Cart(r.Context(), sess.Token(), sess.User().ID)
	if err != nil {
		a.renderBackendError(w, r, vm, err)
		return
	}
	vm.Cart = handlers.BuildCartView(list.Items, a.resolver, vm.Lang)
	vm.Diagnostic = list.Diagnostic
	a.renderPage(w, r, http.StatusOK, "cart", vm)
}

// AddToCartHandler posts the form to the backend and redirects back to the product.
func (a *app) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	form := addToCartForm{ProductID: strings.TrimSpace(r.PostFormValue("product_id"))}
	form.Quantity, _ = strconv.Atoi(strings.TrimSpace(r.PostFormValue("quantity")))

	back := "/products"
	if form.ProductID != "" {
		back = "/products/" + url.PathEscape(form.ProductID)
	}

	if err := a.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && verrs[0].Field() == "Quantity" {
			sess.AddFlash("error", "Choose a quantity of at least 1.")
		} else {
			sess.AddFlash("error", "Choose a product to add.")
		}
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	err := a.backend.AddToCart(r.Context(), sess.Token(), backend.AddToCartRequest{
		UserID:    sess.User().ID,
		ProductID: form.ProductID,
		Quantity:  form.Quantity,
	})
	switch {
	case err == nil:
		sess.AddFlash("success", "Item added to cart successfully!")
	case backend.IsAuthError(err):
		sess.SignOut()
		sess.AddFlash("error", "Your session has expired. Please sign in again.")
		http.Redirect(w, r, "/login?next="+url.QueryEscape(back), http.StatusSeeOther)
		return
	default:
		observability.FromContext(r.Context()).Warn("add to cart failed", zap.Error(err))
		sess.AddFlash("error", "Something went wrong: "+userMessage(err))
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// RemoveCartItemHandler deletes a cart line and returns to the cart.
func (a *app) RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	err := a.backend.RemoveCartItem(r.Context(), sess.Token(), sess.User().ID, chi.URLParam(r, "itemID"))
	switch {
	case err == nil:
		sess.AddFlash("success", "Item removed from your cart.")
	case backend.IsAuthError(err):
		sess.SignOut()
		sess.AddFlash("error", "Your session has expired. Please sign in again.")
		http.Redirect(w, r, "/login?next=%2Fcart", http.StatusSeeOther)
		return
	default:
		sess.AddFlash("error", "Something went wrong: "+userMessage(err))
	}
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", "/cart")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

// userMessage surfaces the backend's own message when it sent one.
func userMessage(err error) string {
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return "the store could not be reached"
}

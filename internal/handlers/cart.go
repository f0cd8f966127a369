package handlers

import (
	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/format"
	"ecocycle.app/storefront/internal/media"
)

// CartLine is one row of the cart table.
type CartLine struct {
	ID        string
	Name      string
	Image     string
	Price     string
	Quantity  int
	LineTotal string
	LowStock  bool
}

// CartView backs the cart page.
type CartView struct {
	Lines    []CartLine
	Count    int
	Subtotal string
	Empty    bool
}

// BuildCartView totals the cart and resolves line images.
func BuildCartView(items []backend.CartItem, resolver media.Resolver, lang string) *CartView {
	view := &CartView{}
	var subtotal float64
	for _, item := range items {
		qty := item.Quantity.Int()
		subtotal += item.LineTotal()
		view.Count += qty
		view.Lines = append(view.Lines, CartLine{
			ID:        item.ID.String(),
			Name:      displayName(item.Name),
			Image:     resolver.Resolve(item.ImageURL),
			Price:     format.Baht(item.Price.Float64(), lang),
			Quantity:  qty,
			LineTotal: format.Baht(item.LineTotal(), lang),
			LowStock:  item.Available.Int() > 0 && item.Available.Int() < qty,
		})
	}
	view.Subtotal = format.Baht(subtotal, lang)
	view.Empty = len(view.Lines) == 0
	return view
}

package handlers

import (
	"net/url"
	"sort"
	"strings"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/format"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/status"
)

// OrderRow is one line of the order history table.
type OrderRow struct {
	ID               string
	DisplayID        string
	Date             string
	Status           status.Badge
	Total            string
	ItemCount        int
	Lines            []string
	TrackingNumber   string
	DeliveryEstimate string
	DetailsHref      string
}

// OrdersView backs the account order history page.
type OrdersView struct {
	Rows  []OrderRow
	Empty bool
}

// DisplayOrderID formats an order id the way customers see it.
func DisplayOrderID(id string) string {
	return "ECO - " + strings.TrimSpace(id)
}

// BuildOrdersView lists orders newest first. Orders without a parseable date keep their backend order.
func BuildOrdersView(orders []backend.Order, lang string) *OrdersView {
	sorted := append([]backend.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, okA := format.ParseDate(sorted[i].PlacedOn())
		b, okB := format.ParseDate(sorted[j].PlacedOn())
		if !okA || !okB {
			return false
		}
		return a.After(b)
	})

	view := &OrdersView{}
	for _, o := range sorted {
		id := o.ID.String()
		row := OrderRow{
			ID:               id,
			DisplayID:        DisplayOrderID(id),
			Date:             format.Date(o.PlacedOn(), lang),
			Status:           status.Order(o.Status),
			Total:            format.Baht(o.Amount(), lang),
			ItemCount:        o.Items.Count,
			TrackingNumber:   o.TrackingNumber,
			DeliveryEstimate: o.DeliveryEstimate,
			DetailsHref:      "/order-confirmation?orderId=" + url.QueryEscape(id),
		}
		for _, line := range o.Items.Lines {
			row.Lines = append(row.Lines, line.Label())
		}
		view.Rows = append(view.Rows, row)
	}
	view.Empty = len(view.Rows) == 0
	return view
}

// ConfirmationItem is one purchased line on the confirmation page.
type ConfirmationItem struct {
	Name     string
	Image    string
	Quantity int
	Price    string
}

// ConfirmationView backs the order confirmation page.
type ConfirmationView struct {
	OrderID           string
	DisplayID         string
	OrderDate         string
	CustomerEmail     string
	Items             []ConfirmationItem
	Shipping          backend.ShippingAddress
	PaymentMethod     string
	CardNumber        string
	Subtotal          string
	ShippingCost      string
	FreeShipping      bool
	Tax               string
	Total             string
	EstimatedDelivery string
}

// BuildConfirmationView renders the confirmation with resolved item images and a masked card.
func BuildConfirmationView(c backend.OrderConfirmation, fallbackID string, resolver media.Resolver, lang string) *ConfirmationView {
	id := c.OrderID.String()
	if id == "" {
		id = fallbackID
	}
	view := &ConfirmationView{
		OrderID:           id,
		DisplayID:         DisplayOrderID(id),
		OrderDate:         format.Date(c.OrderDate, lang),
		CustomerEmail:     c.CustomerEmail,
		Shipping:          c.Shipping,
		PaymentMethod:     paymentLabel(c.Payment.Method),
		CardNumber:        format.MaskCard(c.Payment.Last4.String()),
		Subtotal:          format.Baht(c.Subtotal.Float64(), lang),
		ShippingCost:      format.Baht(c.ShippingCost.Float64(), lang),
		FreeShipping:      c.ShippingCost.Float64() == 0,
		Tax:               format.Baht(c.Tax.Float64(), lang),
		Total:             format.Baht(c.Total.Float64(), lang),
		EstimatedDelivery: c.EstimatedDelivery,
	}
	for _, item := range c.Items {
		view.Items = append(view.Items, ConfirmationItem{
			Name:     displayName(item.Name),
			Image:    resolver.Resolve(item.ImageURL),
			Quantity: item.Quantity.Int(),
			Price:    format.Baht(item.Price.Float64(), lang),
		})
	}
	return view
}

func paymentLabel(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "", "card", "credit_card", "credit card":
		return "Credit card"
	case "promptpay":
		return "PromptPay"
	case "cod", "cash_on_delivery":
		return "Cash on delivery"
	default:
		return method
	}
}

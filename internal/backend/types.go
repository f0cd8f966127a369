package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexString decodes JSON strings, numbers and booleans into text. Objects
// contribute their "name" (or "id") member, which covers serialized foreign keys.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(strings.TrimSpace(v))
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		for _, key := range []string{"name", "title", "id"} {
			if raw, ok := obj[key]; ok {
				return s.UnmarshalJSON(raw)
			}
		}
		*s = ""
	case '[':
		return fmt.Errorf("backend: cannot decode array into text")
	default:
		*s = FlexString(string(data))
	}
	return nil
}

// String returns the decoded text.
func (s FlexString) String() string { return string(s) }

// FlexFloat decodes JSON numbers and numeric strings (DRF serializes decimals as strings).
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*f = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("backend: invalid number %q", text)
	}
	*f = FlexFloat(v)
	return nil
}

// Float64 returns the decoded value.
func (f FlexFloat) Float64() float64 { return float64(f) }

// FlexInt decodes JSON integers, numeric strings and booleans (true is 1).
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "", "null", "false":
		*i = 0
		return nil
	case "true":
		*i = 1
		return nil
	}
	var f FlexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = FlexInt(math.Round(float64(f)))
	return nil
}

// Int returns the decoded value.
func (i FlexInt) Int() int { return int(i) }

// Product is a catalogue entry as served by the storefront and admin endpoints.
type Product struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       FlexFloat  `json:"price"`
	Stock       FlexInt    `json:"stock"`
	Inventory   FlexInt    `json:"inventory"`
	Category    FlexString `json:"category"`
	Image       string     `json:"image"`
	ImageURL    string     `json:"imageUrl"`
	Status      string     `json:"status"`
}

// ImageRef returns the stored image reference, preferring the image field.
func (p Product) ImageRef() string {
	if strings.TrimSpace(p.Image) != "" {
		return p.Image
	}
	return p.ImageURL
}

// Available returns the units in stock. Admin payloads call it inventory.
func (p Product) Available() int {
	if p.Stock > 0 {
		return p.Stock.Int()
	}
	return p.Inventory.Int()
}

// OrderLine is a single product line within an order.
type OrderLine struct {
	ProductName string    `json:"product_name"`
	Name        string    `json:"name"`
	Quantity    FlexInt   `json:"quantity"`
	Price       FlexFloat `json:"price"`
	TotalPrice  FlexFloat `json:"total_price"`
}

// Label returns the product name of the line.
func (l OrderLine) Label() string {
	if l.ProductName != "" {
		return l.ProductName
	}
	return l.Name
}

// OrderItems accepts either an item count or a list of lines.
type OrderItems struct {
	Count int
	Lines []OrderLine
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OrderItems) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var lines []OrderLine
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		o.Lines = lines
		o.Count = 0
		for _, line := range lines {
			qty := line.Quantity.Int()
			if qty <= 0 {
				qty = 1
			}
			o.Count += qty
		}
		return nil
	}
	var n FlexInt
	if err := n.UnmarshalJSON(data); err != nil {
		return err
	}
	o.Count = n.Int()
	o.Lines = nil
	return nil
}

// Order is a customer order as listed in account history and in the admin console.
type Order struct {
	ID               FlexString `json:"id"`
	Date             string     `json:"date"`
	OrderDate        string     `json:"order_date"`
	Customer         FlexString `json:"customer"`
	Total            FlexFloat  `json:"total"`
	TotalPrice       FlexFloat  `json:"total_price"`
	Status           string     `json:"status"`
	Items            OrderItems `json:"items"`
	TrackingNumber   string     `json:"trackingNumber"`
	DeliveryEstimate string     `json:"deliveryEstimate"`
}

// PlacedOn returns the order date as sent by the backend.
func (o Order) PlacedOn() string {
	if o.Date != "" {
		return o.Date
	}
	return o.OrderDate
}

// Amount returns the order total.
func (o Order) Amount() float64 {
	if o.Total != 0 {
		return o.Total.Float64()
	}
	return o.TotalPrice.Float64()
}

// User is an account record from the admin users endpoint.
type User struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Username    string     `json:"username"`
	Fullname    string     `json:"fullname"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	LastLogin   string     `json:"lastLogin"`
	LastLoginAt string     `json:"last_login"`
}

// DisplayName picks the most descriptive available name.
func (u User) DisplayName() string {
	for _, candidate := range []string{u.Name, u.Fullname, u.Username, u.Email} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "#" + u.ID.String()
}

// LastSeen returns the last login timestamp in whichever casing the backend used.
func (u User) LastSeen() string {
	if u.LastLogin != "" {
		return u.LastLogin
	}
	return u.LastLoginAt
}

// CartItem is a line in the signed-in customer's cart.
type CartItem struct {
	ID          FlexString `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       FlexFloat  `json:"price"`
	Quantity    FlexInt    `json:"quantity"`
	Available   FlexInt    `json:"available"`
	ImageURL    string     `json:"imageUrl"`
}

// LineTotal returns price times quantity.
func (c CartItem) LineTotal() float64 {
	return c.Price.Float64() * float64(c.Quantity.Int())
}

// ConfirmationItem is a purchased line on the order confirmation.
type ConfirmationItem struct {
	ID       FlexString `json:"id"`
	Name     string     `json:"name"`
	Quantity FlexInt    `json:"quantity"`
	Price    FlexFloat  `json:"price"`
	ImageURL string     `json:"imageUrl"`
}

// ShippingAddress is the delivery address captured at checkout.
type ShippingAddress struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentSummary describes the payment method without sensitive details.
type PaymentSummary struct {
	Method string     `json:"method"`
	Last4  FlexString `json:"last4"`
}

// OrderConfirmation is the summary shown after checkout.
type OrderConfirmation struct {
	OrderID           FlexString         `json:"orderId"`
	OrderDate         string             `json:"orderDate"`
	CustomerEmail     string             `json:"customer_email"`
	Items             []ConfirmationItem `json:"items"`
	Shipping          ShippingAddress    `json:"shipping"`
	Payment           PaymentSummary     `json:"payment"`
	Subtotal          FlexFloat          `json:"subtotal"`
	ShippingCost      FlexFloat          `json:"shippingCost"`
	Tax               FlexFloat          `json:"tax"`
	Total             FlexFloat          `json:"total"`
	EstimatedDelivery string             `json:"estimatedDelivery"`
}

// Stats are the admin overview counters.
type Stats struct {
	TotalSales       FlexFloat `json:"totalSales"`
	TotalOrders      FlexInt   `json:"totalOrders"`
	TotalProducts    FlexInt   `json:"totalProducts"`
	TotalUsers       FlexInt   `json:"totalUsers"`
	PendingOrders    FlexInt   `json:"pendingOrders"`
	LowStockProducts FlexInt   `json:"lowStockProducts"`
}

// IsZero reports whether no counter was populated.
func (s Stats) IsZero() bool {
	return s == Stats{}
}

// List carries normalized records plus the shape diagnostic, if any.
type List[T any] struct {
	Items      []T
	Diagnostic string
}

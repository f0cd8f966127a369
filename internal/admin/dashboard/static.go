package dashboard

import (
	"context"
	"time"
)

// StaticService provides canned responses for development and tests.
type StaticService struct {
	Stats    Stats
	Products []Product
	Orders   []Order
	Users    []User
	// Err, when set, is returned by every fetch.
	Err error
}

var _ Service = (*StaticService)(nil)

// NewStaticService returns a StaticService populated with sample data.
// Stats are left zero so the overview derives them.
func NewStaticService() *StaticService {
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 10, 0, 0, 0, time.UTC) }
	return &StaticService{
		Products: []Product{
			{ID: "P001", Name: "Eco-Friendly Water Bottle", Price: 15.99, Stock: 145, Category: "Kitchen", Status: "active", Image: "/images/PD01.jpg"},
			{ID: "P002", Name: "Bamboo Utensil Set", Price: 12.50, Stock: 78, Category: "Kitchen", Status: "active", Image: "/images/PD02.jpg"},
			{ID: "P003", Name: "Reusable Shopping Bag", Price: 8.99, Stock: 243, Category: "Bags", Status: "active", Image: "/images/PD03.jpg"},
			{ID: "P004", Name: "Solar-Powered Charger", Price: 34.99, Stock: 52, Category: "Electronics", Status: "active", Image: "/images/PD04.jpg"},
			{ID: "P005", Name: "Compostable Phone Case", Price: 19.99, Stock: 18, Category: "Accessories", Status: "active", Image: "/images/PD05.jpg"},
			{ID: "P006", Name: "Recycled Notebook", Price: 6.99, Stock: 112, Category: "Stationery", Status: "draft", Image: "/images/PD06.jpg"},
			{ID: "P007", Name: "Biodegradable Plant Pots", Price: 9.99, Stock: 0, Category: "Garden", Status: "archived", Image: "/images/PD07.jpg"},
		},
		Orders: []Order{
			{ID: "12345678", Date: "2025-05-01", PlacedAt: day(time.May, 1), Customer: "John Doe", Total: 35.97, Status: "delivered", Items: 3},
			{ID: "87654321", Date: "2025-04-30", PlacedAt: day(time.April, 30), Customer: "Jane Smith", Total: 15.99, Status: "shipped", Items: 1},
			{ID: "11223344", Date: "2025-04-29", PlacedAt: day(time.April, 29), Customer: "Alex Johnson", Total: 67.45, Status: "processing", Items: 4},
			{ID: "55667788", Date: "2025-04-28", PlacedAt: day(time.April, 28), Customer: "Sarah Williams", Total: 29.99, Status: "processing", Items: 2},
			{ID: "99887766", Date: "2025-04-27", PlacedAt: day(time.April, 27), Customer: "Robert Brown", Total: 54.97, Status: "shipped", Items: 3},
			{ID: "44332211", Date: "2025-04-20", PlacedAt: day(time.April, 20), Customer: "Mali Sukjai", Total: 12.00, Status: "cancelled", Items: 1},
		},
		Users: []User{
			{ID: "U001", Name: "Admin User", Email: "admin@ecocycle.com", Role: "admin", LastLogin: "2025-05-02"},
			{ID: "U002", Name: "John Doe", Email: "john@example.com", Role: "customer", LastLogin: "2025-05-01"},
			{ID: "U003", Name: "Jane Smith", Email: "jane@example.com", Role: "customer", LastLogin: "2025-04-30"},
			{ID: "U004", Name: "Alex Johnson", Email: "alex@example.com", Role: "customer", LastLogin: "2025-04-29"},
			{ID: "U005", Name: "Sarah Williams", Email: "sarah@example.com", Role: "customer", LastLogin: "2025-04-25"},
		},
	}
}

// FetchStats implements Service.
func (s *StaticService) FetchStats(context.Context, string) (Stats, error) {
	return s.Stats, s.Err
}

// FetchProducts implements Service.
func (s *StaticService) FetchProducts(context.Context, string) ([]Product, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]Product(nil), s.Products...), nil
}

// FetchOrders implements Service.
func (s *StaticService) FetchOrders(context.Context, string) ([]Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]Order(nil), s.Orders...), nil
}

// FetchUsers implements Service.
func (s *StaticService) FetchUsers(context.Context, string) ([]User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]User(nil), s.Users...), nil
}

package dashboard

import (
	"context"
	"errors"
	"strings"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/format"
	"ecocycle.app/storefront/internal/media"
)

// Backend is the subset of backend.Client used by HTTPService.
type Backend interface {
	AdminStats(ctx context.Context, token string) (backend.Stats, error)
	AdminProducts(ctx context.Context, token string) (backend.List[backend.Product], error)
	AdminOrders(ctx context.Context, token string) (backend.List[backend.Order], error)
	AdminUsers(ctx context.Context, token string) (backend.List[backend.User], error)
}

// HTTPService reads the dashboard from the remote admin endpoints.
type HTTPService struct {
	client   Backend
	resolver media.Resolver
}

var _ Service = (*HTTPService)(nil)

// NewHTTPService wires a Service on top of the backend client.
func NewHTTPService(client Backend, resolver media.Resolver) *HTTPService {
	return &HTTPService{client: client, resolver: resolver}
}

// FetchStats implements Service. A backend without the stats endpoint yields
// zero counters so the overview can derive them.
func (s *HTTPService) FetchStats(ctx context.Context, token string) (Stats, error) {
	if s == nil || s.client == nil {
		return Stats{}, ErrNotConfigured
	}
	raw, err := s.client.AdminStats(ctx, token)
	if errors.Is(err, backend.ErrNotFound) {
		return Stats{}, nil
	}
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalSales:       raw.TotalSales.Float64(),
		TotalOrders:      raw.TotalOrders.Int(),
		TotalProducts:    raw.TotalProducts.Int(),
		TotalUsers:       raw.TotalUsers.Int(),
		PendingOrders:    raw.PendingOrders.Int(),
		LowStockProducts: raw.LowStockProducts.Int(),
	}, nil
}

// FetchProducts implements Service.
func (s *HTTPService) FetchProducts(ctx context.Context, token string) ([]Product, error) {
	if s == nil || s.client == nil {
		return nil, ErrNotConfigured
	}
	list, err := s.client.AdminProducts(ctx, token)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(list.Items))
	for _, p := range list.Items {
		status := strings.TrimSpace(p.Status)
		if status == "" {
			status = "active"
		}
		out = append(out, Product{
			ID:       p.ID.String(),
			Name:     p.Name,
			Category: p.Category.String(),
			Price:    p.Price.Float64(),
			Stock:    p.Available(),
			Status:   strings.ToLower(status),
			Image:    s.resolver.Resolve(p.ImageRef()),
		})
	}
	return out, nil
}

// FetchOrders implements Service.
func (s *HTTPService) FetchOrders(ctx context.Context, token string) ([]Order, error) {
	if s == nil || s.client == nil {
		return nil, ErrNotConfigured
	}
	list, err := s.client.AdminOrders(ctx, token)
	if err != nil {
		return nil, err
	}
	out := make([]Order, 0, len(list.Items))
	for _, o := range list.Items {
		placed, _ := format.ParseDate(o.PlacedOn())
		out = append(out, Order{
			ID:       o.ID.String(),
			Customer: o.Customer.String(),
			Date:     o.PlacedOn(),
			PlacedAt: placed,
			Total:    o.Amount(),
			Status:   strings.ToLower(strings.TrimSpace(o.Status)),
			Items:    o.Items.Count,
		})
	}
	return out, nil
}

// FetchUsers implements Service.
func (s *HTTPService) FetchUsers(ctx context.Context, token string) ([]User, error) {
	if s == nil || s.client == nil {
		return nil, ErrNotConfigured
	}
	list, err := s.client.AdminUsers(ctx, token)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(list.Items))
	for _, u := range list.Items {
		role := strings.ToLower(strings.TrimSpace(u.Role))
		if role == "" {
			role = "customer"
		}
		out = append(out, User{
			ID:        u.ID.String(),
			Name:      u.DisplayName(),
			Email:     u.Email,
			Role:      role,
			LastLogin: u.LastSeen(),
		})
	}
	return out, nil
}

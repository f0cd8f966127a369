package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Snapshot is everything one dashboard tab renders.
type Snapshot struct {
	Tab          Tab
	Stats        Stats
	RecentOrders []Order
	LowStock     []Product
	Products     []Product
	Orders       []Order
	Users        []User
}

// Load fetches the data for tab. The overview fans out to every endpoint
// concurrently and derives missing counters; other tabs fetch their own list.
func Load(ctx context.Context, svc Service, token string, tab Tab) (Snapshot, error) {
	if svc == nil {
		return Snapshot{}, ErrNotConfigured
	}
	snap := Snapshot{Tab: tab}

	switch tab {
	case TabProducts:
		products, err := svc.FetchProducts(ctx, token)
		if err != nil {
			return Snapshot{}, fmt.Errorf("dashboard: products: %w", err)
		}
		snap.Products = products
		return snap, nil
	case TabOrders:
		orders, err := svc.FetchOrders(ctx, token)
		if err != nil {
			return Snapshot{}, fmt.Errorf("dashboard: orders: %w", err)
		}
		snap.Orders = RecentOrders(orders, 0)
		return snap, nil
	case TabUsers:
		users, err := svc.FetchUsers(ctx, token)
		if err != nil {
			return Snapshot{}, fmt.Errorf("dashboard: users: %w", err)
		}
		snap.Users = users
		return snap, nil
	}

	var reported Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := svc.FetchStats(gctx, token)
		if err != nil {
			return fmt.Errorf("dashboard: stats: %w", err)
		}
		reported = stats
		return nil
	})
	g.Go(func() error {
		products, err := svc.FetchProducts(gctx, token)
		if err != nil {
			return fmt.Errorf("dashboard: products: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		orders, err := svc.FetchOrders(gctx, token)
		if err != nil {
			return fmt.Errorf("dashboard: orders: %w", err)
		}
		snap.Orders = orders
		return nil
	})
	g.Go(func() error {
		users, err := svc.FetchUsers(gctx, token)
		if err != nil {
			return fmt.Errorf("dashboard: users: %w", err)
		}
		snap.Users = users
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	snap.Tab = TabOverview
	snap.Stats = DeriveStats(reported, snap.Products, snap.Orders, snap.Users)
	snap.RecentOrders = RecentOrders(snap.Orders, RecentOrdersLimit)
	snap.LowStock = LowStock(snap.Products, LowStockLimit)
	return snap, nil
}

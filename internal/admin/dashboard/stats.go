package dashboard

import (
	"sort"
	"strings"
)

const (
	// LowStockThreshold is the stock level below which an active product needs restocking.
	LowStockThreshold = 20
	// RecentOrdersLimit caps the orders listed on the overview.
	RecentOrdersLimit = 5
	// LowStockLimit caps the low stock products listed on the overview.
	LowStockLimit = 3
)

// DeriveStats fills counters the backend did not report from the fetched lists.
func DeriveStats(reported Stats, products []Product, orders []Order, users []User) Stats {
	out := reported
	if out.TotalSales == 0 {
		for _, o := range orders {
			if isCancelled(o.Status) {
				continue
			}
			out.TotalSales += o.Total
		}
	}
	if out.TotalOrders == 0 {
		out.TotalOrders = len(orders)
	}
	if out.TotalProducts == 0 {
		out.TotalProducts = len(products)
	}
	if out.TotalUsers == 0 {
		out.TotalUsers = len(users)
	}
	if out.PendingOrders == 0 {
		for _, o := range orders {
			if isPending(o.Status) {
				out.PendingOrders++
			}
		}
	}
	if out.LowStockProducts == 0 {
		out.LowStockProducts = len(LowStock(products, 0))
	}
	return out
}

// LowStock returns active products under LowStockThreshold, emptiest first.
// A limit of zero or less returns all of them.
func LowStock(products []Product, limit int) []Product {
	var low []Product
	for _, p := range products {
		if p.Stock < LowStockThreshold && isActive(p.Status) {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	if limit > 0 && len(low) > limit {
		low = low[:limit]
	}
	return low
}

// RecentOrders returns up to limit orders, newest first. Orders without a
// parseable date keep their relative order after the dated ones.
func RecentOrders(orders []Order, limit int) []Order {
	sorted := append([]Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PlacedAt, sorted[j].PlacedAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.After(b)
		}
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func isCancelled(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "cancelled" || s == "canceled"
}

func isPending(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "pending", "processing":
		return true
	}
	return false
}

// Products without a status are treated as active.
func isActive(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return s == "" || s == "active"
}

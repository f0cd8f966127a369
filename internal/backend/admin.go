package backend

import "context"

// AdminStats returns the overview counters.
func (c *Client) AdminStats(ctx context.Context, token string) (Stats, error) {
	return getObject[Stats](ctx, c, "admin_stats", "/api/admin/stats/", token, true)
}

// AdminProducts lists every product including drafts.
func (c *Client) AdminProducts(ctx context.Context, token string) (List[Product], error) {
	return getList[Product](ctx, c, "admin_products", "/api/admin/products/", token, "products", true)
}

// AdminOrders lists every order.
func (c *Client) AdminOrders(ctx context.Context, token string) (List[Order], error) {
	return getList[Order](ctx, c, "admin_orders", "/api/admin/orders/", token, "orders", true)
}

// AdminUsers lists every account.
func (c *Client) AdminUsers(ctx context.Context, token string) (List[User], error) {
	return getList[User](ctx, c, "admin_users", "/api/admin/users/", token, "users", true)
}

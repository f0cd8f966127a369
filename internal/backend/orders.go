package backend

import (
	"context"
	"strings"
)

// AccountOrders lists the orders of the token's owner.
func (c *Client) AccountOrders(ctx context.Context, token string) (List[Order], error) {
	return getList[Order](ctx, c, "account_orders", c.ordersPath, token, "orders", true)
}

// OrderConfirmation returns the post-checkout summary for an order.
func (c *Client) OrderConfirmation(ctx context.Context, token, orderID string) (OrderConfirmation, error) {
	if strings.TrimSpace(orderID) == "" {
		return OrderConfirmation{}, ErrNotFound
	}
	return getObject[OrderConfirmation](ctx, c, "order_confirmation", "/order/"+escapeSegment(orderID)+"/confirmation/", token, false)
}

package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ListProducts returns the public catalogue.
func (c *Client) ListProducts(ctx context.Context) (List[Product], error) {
	return getList[Product](ctx, c, "list_products", "/products/", "", "products", false)
}

// GetProduct returns a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	if strings.TrimSpace(id) == "" {
		return Product{}, ErrNotFound
	}
	return getObject[Product](ctx, c, "get_product", "/products/"+escapeSegment(id)+"/", "", false)
}

// AddToCartRequest is the payload accepted by the add-to-cart endpoint.
type AddToCartRequest struct {
	UserID    string `validate:"required"`
	ProductID string `validate:"required"`
	Quantity  int    `validate:"min=1,max=99"`
}

// AddToCart puts quantity units of a product into the user's cart.
func (c *Client) AddToCart(ctx context.Context, token string, req AddToCartRequest) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("backend: add_to_cart: %w", err)
	}
	_, err := c.do(ctx, call{
		op:       "add_to_cart",
		method:   http.MethodPost,
		endpoint: "/add-to-cart/",
		token:    token,
		body: map[string]any{
			"user_id":    numericOrString(req.UserID),
			"product_id": numericOrString(req.ProductID),
			"quantity":   req.Quantity,
		},
		idempotent: true,
	})
	return err
}

// Cart lists the items in the user's cart.
func (c *Client) Cart(ctx context.Context, token, userID string) (List[CartItem], error) {
	if strings.TrimSpace(userID) == "" {
		return List[CartItem]{}, ErrMissingToken
	}
	return getList[CartItem](ctx, c, "cart", "/cart/"+escapeSegment(userID)+"/", token, "items", true)
}

// RemoveCartItem deletes a line from the user's cart.
func (c *Client) RemoveCartItem(ctx context.Context, token, userID, itemID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingToken
	}
	if strings.TrimSpace(itemID) == "" {
		return errors.New("backend: remove_cart_item: item id is required")
	}
	_, err := c.do(ctx, call{
		op:          "remove_cart_item",
		method:      http.MethodPost,
		endpoint:    "/cart/" + escapeSegment(userID) + "/remove/" + escapeSegment(itemID) + "/",
		token:       token,
		idempotent:  true,
		requireAuth: true,
	})
	return err
}

func numericOrString(value string) any {
	value = strings.TrimSpace(value)
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	return value
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"ecocycle.app/storefront/internal/backend"
)

// ErrorPanel is the inline error block rendered in place of page content.
type ErrorPanel struct {
	Status    int
	Title     string
	Message   string
	ActionURL string
	Action    string
}

// NewErrorPanel maps a backend failure to what the visitor sees. retryURL is
// the page to reload for transient failures, loginURL the sign-in link for
// rejected tokens.
func NewErrorPanel(err error, retryURL, loginURL string) *ErrorPanel {
	switch {
	case backend.IsAuthError(err):
		return &ErrorPanel{
			Status:    http.StatusUnauthorized,
			Title:     "Session expired",
			Message:   "Your session is no longer valid. Please sign in again.",
			ActionURL: loginURL,
			Action:    "Sign in",
		}
	case errors.Is(err, backend.ErrNotFound):
		return &ErrorPanel{
			Status:    http.StatusNotFound,
			Title:     "Not found",
			Message:   "We couldn't find what you were looking for.",
			ActionURL: "/products",
			Action:    "Back to products",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &ErrorPanel{
			Status:    http.StatusGatewayTimeout,
			Title:     "The store is taking too long",
			Message:   "The EcoCycle service did not answer in time.",
			ActionURL: retryURL,
			Action:    "Try again",
		}
	default:
		return &ErrorPanel{
			Status:    http.StatusBadGateway,
			Title:     "Something went wrong",
			Message:   "We couldn't reach the EcoCycle service.",
			ActionURL: retryURL,
			Action:    "Try again",
		}
	}
}

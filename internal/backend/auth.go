package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Credentials are exchanged for an API token.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is the identity returned by a successful login.
type Session struct {
	Token    string
	UserID   string
	Username string
	Email    string
	Role     string
}

// IsAdmin reports whether the account may use the admin console.
func (s Session) IsAdmin() bool {
	return strings.EqualFold(s.Role, "admin")
}

// Login exchanges credentials for a token. Invalid credentials yield ErrUnauthorized.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	if err := c.validate.Struct(creds); err != nil {
		return Session{}, fmt.Errorf("backend: login: %w", err)
	}

	body, err := c.do(ctx, call{
		op:       "login",
		method:   http.MethodPost,
		endpoint: "/login/",
		body:     creds,
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest {
			return Session{}, fmt.Errorf("%w: %s", ErrUnauthorized, statusErr.Message)
		}
		return Session{}, err
	}

	var raw struct {
		Token     string     `json:"token"`
		Key       string     `json:"key"`
		AuthToken string     `json:"auth_token"`
		UserID    FlexString `json:"user_id"`
		ID        FlexString `json:"id"`
		Username  string     `json:"username"`
		Email     string     `json:"email"`
		Role      string     `json:"role"`
		User      *struct {
			ID       FlexString `json:"id"`
			Username string     `json:"username"`
			Email    string     `json:"email"`
			Role     string     `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Session{}, fmt.Errorf("backend: login: decode: %w", err)
	}

	sess := Session{
		Token:    firstNonEmpty(raw.Token, raw.Key, raw.AuthToken),
		UserID:   firstNonEmpty(raw.UserID.String(), raw.ID.String()),
		Username: firstNonEmpty(raw.Username, creds.Username),
		Email:    raw.Email,
		Role:     strings.ToLower(raw.Role),
	}
	if raw.User != nil {
		sess.UserID = firstNonEmpty(sess.UserID, raw.User.ID.String())
		sess.Username = firstNonEmpty(raw.User.Username, sess.Username)
		sess.Email = firstNonEmpty(sess.Email, raw.User.Email)
		sess.Role = firstNonEmpty(sess.Role, strings.ToLower(raw.User.Role))
	}
	if sess.Token == "" {
		return Session{}, errors.New("backend: login: response carried no token")
	}
	if sess.Role == "" {
		sess.Role = "customer"
	}
	return sess, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

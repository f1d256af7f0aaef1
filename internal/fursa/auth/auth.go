package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/logutil"
)

const (
	loginPath = "/auth/login"
	mePath    = "/auth/me"
)

// UserID accepts both numeric and string ids.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = UserID(n.String())
	return nil
}

// User is the signed in FursaConnect account.
type User struct {
	ID    UserID `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Client wraps the backend authentication endpoints.
type Client struct {
	backend *backend.Client
}

// New constructs an auth client. b must carry a cookie jar for the session
// to survive between calls.
func New(b *backend.Client) *Client {
	return &Client{backend: b}
}

// Login exchanges credentials for a session cookie held in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}

	var reply struct {
		User *User `json:"user"`
	}
	err := c.backend.PostJSON(ctx, loginPath, struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}, &reply)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	logutil.Debugf("login succeeded: email=%s", email)
	return reply.User, nil
}

// CurrentUser returns the signed in user, or nil when the session is missing
// or expired.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var reply struct {
		User *User `json:"user"`
	}
	if err := c.backend.GetJSON(ctx, mePath, &reply); err != nil {
		if backend.IsStatus(err, http.StatusUnauthorized) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return reply.User, nil
}

// CurrentUserID returns the id of the signed in user, or "" when signed out.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	user, err := c.CurrentUser(ctx)
	if err != nil || user == nil {
		return "", err
	}
	return string(user.ID), nil
}

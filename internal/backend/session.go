package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Session is the persisted login state.
type Session struct {
	Backend string         `json:"backend"`
	Cookies []*http.Cookie `json:"cookies"`
}

// NewJar returns an empty cookie jar.
func NewJar() (http.CookieJar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// LoadJar restores cookies saved for baseURL from path. A missing session
// file, or one saved for another backend, yields an empty jar.
func LoadJar(path, baseURL string) (http.CookieJar, error) {
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return jar, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return jar, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.TrimRight(sess.Backend, "/") != baseURL {
		return jar, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	jar.SetCookies(u, sess.Cookies)
	return jar, nil
}

// SaveSession writes the cookies the client holds for its backend to path.
//
// A cookie jar only reveals names and values, so Path, Domain, Secure and
// Expires are not saved. Only cookies visible at the backend root are kept.
// LoadJar restores them as host-only session cookies on "/"; an expired
// token is rejected by the backend with 401 and needs a new login.
func SaveSession(path string, c *Client) error {
	if c.Jar() == nil {
		return errors.New("client has no cookie jar")
	}
	base := c.BaseURL()
	sess := Session{
		Backend: base.String(),
		Cookies: c.Jar().Cookies(base),
	}
	if len(sess.Cookies) == 0 {
		return errors.New("backend did not set a session cookie")
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// ClearSession removes a saved session.
func ClearSession(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

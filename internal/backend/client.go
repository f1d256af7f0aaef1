package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fursaconnect/fursa/internal/logutil"
	"github.com/hashicorp/go-cleanhttp"
)

const (
	// DefaultBaseURL is the production FursaConnect API.
	DefaultBaseURL = "https://fursaconnet-production.up.railway.app"

	defaultTimeout = 30 * time.Second
	userAgent      = "fursa/1"
	maxErrorBody   = 64 << 10
)

// ErrEmptyReply is returned when a 2xx reply has no body but the caller
// expected one.
var ErrEmptyReply = errors.New("empty response body")

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Jar carries the session cookie. Requests made without a jar are
	// anonymous.
	Jar http.CookieJar
}

// Client talks to the FursaConnect backend.
type Client struct {
	base      *url.URL
	http      *http.Client
	requestID string
}

// New constructs a backend client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		raw = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", raw)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout
	httpClient.Jar = opts.Jar

	return &Client{base: base, http: httpClient}, nil
}

// BaseURL returns the backend root URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Jar returns the cookie jar in use, if any.
func (c *Client) Jar() http.CookieJar { return c.http.Jar }

// WithRequestID returns a copy of the client that tags every request with id.
func (c *Client) WithRequestID(id string) *Client {
	clone := *c
	clone.requestID = id
	return &clone
}

// Endpoint resolves path against the backend root.
func (c *Client) Endpoint(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// PostJSON sends body as JSON and decodes the JSON response into out.
// out may be nil when the response body is not needed; otherwise an empty
// body fails with ErrEmptyReply.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(path), bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// Delete issues a DELETE and decodes the JSON response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.Endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

// PostMultipart submits form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	body, contentType, err := form.Encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.requestID != "" {
		req.Header.Set("X-Request-ID", c.requestID)
	}

	logutil.Debugf("backend request: method=%s path=%s", req.Method, req.URL.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	logutil.Debugf("backend response: path=%s status=%d", req.URL.Path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyReply
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	// Message is the most specific error text found in the body, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

func newStatusError(resp *http.Response) *StatusError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
}

// Envelope is the common shape of backend JSON replies.
type Envelope struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports an application level failure in a 2xx reply.
func (e Envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

// Reason returns the most specific error text in the envelope.
func (e Envelope) Reason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func errorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err == nil {
		return env.Reason()
	}
	return string(trimmed)
}

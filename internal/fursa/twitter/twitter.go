package twitter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetweettypes "github.com/michimani/gotwi/tweet/managetweet/types"
)

const (
	postPath = "/auth/twitter2/post"

	// ImagesDroppedNote is attached to the receipt when images were supplied.
	// Image upload to X is disabled, only the text is posted.
	ImagesDroppedNote = "image upload is temporarily disabled for X (Twitter); posted text only"
)

var httpTimeout = 30 * time.Second

// Config captures the credentials required for OAuth 1.0a user-context requests.
type Config struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string

	// HTTPClient overrides the client used for X API calls.
	HTTPClient *http.Client
}

// Client implements fursa.Adapter for X (Twitter).
type Client struct {
	backend *backend.Client
	api     *gotwi.Client
}

// New returns an adapter that posts through the backend's connected X account.
func New(b *backend.Client) *Client {
	return &Client{backend: b}
}

// NewDirect returns an adapter that posts straight to the X API.
func NewDirect(cfg Config) (*Client, error) {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	debugEnabled := os.Getenv("FURSA_TWITTER_DEBUG") == "1" || logutil.Verbose()

	client, err := gotwi.NewClient(&gotwi.NewClientInput{
		HTTPClient:           httpClient,
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           cfg.AccessToken,
		OAuthTokenSecret:     cfg.AccessSecret,
		APIKey:               cfg.APIKey,
		APIKeySecret:         cfg.APISecret,
		Debug:                debugEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("create X client: %w", err)
	}

	if !client.IsReady() {
		return nil, fmt.Errorf("twitter client not ready")
	}

	return &Client{api: client}, nil
}

// Platform returns the provider identifier.
func (c *Client) Platform() fursa.PlatformID { return fursa.Twitter }

// Send posts content as a tweet. Images are never uploaded: when present they
// are dropped and the receipt says so.
func (c *Client) Send(ctx context.Context, content string, images []fursa.ImageAsset) (*fursa.Receipt, error) {
	logutil.Debugf("posting to twitter: text=%q image_count=%d direct=%t", logutil.Preview(content), len(images), c.api != nil)

	receipt := &fursa.Receipt{}
	if len(images) > 0 {
		logutil.Infof("twitter: %d image(s) attached but image upload is disabled, posting text only", len(images))
		receipt.Note = ImagesDroppedNote
	}

	var err error
	if c.api != nil {
		err = c.postDirect(ctx, content)
	} else {
		err = c.postBackend(ctx, content)
	}
	if err != nil {
		return nil, err
	}
	logutil.Debugf("tweet posted successfully")

	return receipt, nil
}

func (c *Client) postBackend(ctx context.Context, text string) error {
	var reply backend.Envelope
	err := c.backend.PostJSON(ctx, postPath, struct {
		Text string `json:"text"`
	}{Text: text}, &reply)
	if err != nil {
		return backend.PlatformError(fursa.Twitter, err)
	}
	return backend.CheckEnvelope(fursa.Twitter, reply)
}

func (c *Client) postDirect(ctx context.Context, text string) error {
	input := &managetweettypes.CreateInput{
		Text: gotwi.String(text),
	}
	if _, err := managetweet.Create(ctx, c.api, input); err != nil {
		return &fursa.PlatformError{
			Platform: fursa.Twitter,
			Status:   gotwiStatus(err),
			Message:  fmt.Sprintf("post tweet: %v", unwrapGotwiError(err)),
			Err:      err,
		}
	}
	return nil
}

func gotwiStatus(err error) int {
	var gwErr *gotwi.GotwiError
	if errors.As(err, &gwErr) && gwErr != nil {
		return gwErr.StatusCode
	}
	return 0
}

func unwrapGotwiError(err error) error {
	var gwErr *gotwi.GotwiError
	if errors.As(err, &gwErr) && gwErr != nil {
		return fmt.Errorf("%s", summarizeGotwiError(gwErr))
	}
	return err
}

func summarizeGotwiError(err *gotwi.GotwiError) string {
	if err == nil {
		return "unknown X API error"
	}

	parts := make([]string, 0, 4)
	if err.Title != "" {
		parts = append(parts, err.Title)
	}
	if err.Detail != "" {
		parts = append(parts, err.Detail)
	}
	for _, apiErr := range err.APIErrors {
		if apiErr.Message != "" {
			parts = append(parts, apiErr.Message)
		}
	}
	if len(parts) == 0 {
		if msg := err.Error(); msg != "" {
			parts = append(parts, msg)
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "X API request failed")
	}

	return strings.Join(parts, "; ")
}

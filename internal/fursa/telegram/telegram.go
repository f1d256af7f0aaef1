package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
)

const sendPath = "/telegram/send"

// UserIDFunc resolves the FursaConnect user whose Telegram channel receives
// the post. An empty id means nobody is signed in.
type UserIDFunc func(ctx context.Context) (string, error)

// StaticUser returns a UserIDFunc that always yields id.
func StaticUser(id string) UserIDFunc {
	return func(context.Context) (string, error) { return id, nil }
}

// Client implements fursa.Adapter for Telegram.
type Client struct {
	backend *backend.Client
	userID  UserIDFunc
}

// New constructs a Telegram adapter. The backend endpoint is not cookie
// authenticated, the user id travels in the form instead.
func New(b *backend.Client, userID UserIDFunc) *Client {
	return &Client{backend: b, userID: userID}
}

// Platform identifies the provider.
func (c *Client) Platform() fursa.PlatformID { return fursa.Telegram }

// Send forwards text and images to the user's linked Telegram channel.
func (c *Client) Send(ctx context.Context, content string, images []fursa.ImageAsset) (*fursa.Receipt, error) {
	userID, err := c.resolveUser(ctx)
	if err != nil {
		return nil, err
	}

	logutil.Debugf("posting to telegram: user_id=%s text=%q image_count=%d", userID, logutil.Preview(content), len(images))

	form := backend.NewForm().
		Field("userId", userID).
		Field("text", content)
	for i, img := range images {
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		form.File("images", name, img.MediaType, img.Data)
	}

	var reply backend.Envelope
	if err := c.backend.PostMultipart(ctx, sendPath, form, &reply); err != nil {
		return nil, backend.PlatformError(fursa.Telegram, err)
	}
	// the endpoint always reports its own verdict
	if reply.Success == nil || !*reply.Success {
		msg := reply.Reason()
		if msg == "" {
			msg = "telegram API error: missing success flag"
		}
		return nil, &fursa.PlatformError{Platform: fursa.Telegram, Message: msg}
	}
	return &fursa.Receipt{}, nil
}

func (c *Client) resolveUser(ctx context.Context) (string, error) {
	if c.userID == nil {
		return "", notAuthenticated()
	}
	id, err := c.userID(ctx)
	if err != nil {
		return "", backend.PlatformError(fursa.Telegram, err)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", notAuthenticated()
	}
	return id, nil
}

func notAuthenticated() error {
	return &fursa.PlatformError{
		Platform: fursa.Telegram,
		Message:  fursa.ErrNotAuthenticated.Error(),
		Err:      fursa.ErrNotAuthenticated,
	}
}

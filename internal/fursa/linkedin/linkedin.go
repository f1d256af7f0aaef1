package linkedin

import (
	"context"
	"fmt"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
)

const postPath = "/auth/linkedin/post"

// Client implements fursa.Adapter for LinkedIn.
type Client struct {
	backend *backend.Client
}

// New constructs a LinkedIn adapter on top of the backend session.
func New(b *backend.Client) *Client {
	return &Client{backend: b}
}

// Platform identifies the provider.
func (c *Client) Platform() fursa.PlatformID { return fursa.LinkedIn }

// Send shares text and images as a single multipart request.
func (c *Client) Send(ctx context.Context, content string, images []fursa.ImageAsset) (*fursa.Receipt, error) {
	logutil.Debugf("posting to linkedin: text=%q image_count=%d", logutil.Preview(content), len(images))

	form := backend.NewForm().Field("text", content)
	for i, img := range images {
		form.File("images", fileName(img, i), img.MediaType, img.Data)
	}

	var reply backend.Envelope
	if err := c.backend.PostMultipart(ctx, postPath, form, &reply); err != nil {
		return nil, backend.PlatformError(fursa.LinkedIn, err)
	}
	if err := backend.CheckEnvelope(fursa.LinkedIn, reply); err != nil {
		return nil, err
	}
	return &fursa.Receipt{}, nil
}

func fileName(img fursa.ImageAsset, index int) string {
	if img.Name != "" {
		return img.Name
	}
	return fmt.Sprintf("image-%d", index+1)
}

package fursa

import (
	"context"
	"fmt"
	"strings"
)

// PlatformID names a social network a post can be published to.
type PlatformID string

const (
	Twitter  PlatformID = "twitter"
	LinkedIn PlatformID = "linkedin"
	Telegram PlatformID = "telegram"
)

// PublishablePlatforms lists every platform with a publish implementation.
var PublishablePlatforms = []PlatformID{Twitter, LinkedIn, Telegram}

// ParsePlatform normalizes user input into a PlatformID. Unknown names are
// kept as-is so that they can be reported as unsupported later on.
func ParsePlatform(raw string) PlatformID {
	return PlatformID(strings.ToLower(strings.TrimSpace(raw)))
}

// DisplayName returns the human readable platform name.
func (p PlatformID) DisplayName() string {
	switch p {
	case Twitter:
		return "X (Twitter)"
	case LinkedIn:
		return "LinkedIn"
	case Telegram:
		return "Telegram"
	}
	return string(p)
}

// ContentType controls how many images a post may carry.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentImage    ContentType = "image"
	ContentCarousel ContentType = "carousel"
)

// MaxCarouselImages is the upper bound on images in a carousel post.
const MaxCarouselImages = 10

// ParseContentType validates a content type name.
func ParseContentType(raw string) (ContentType, error) {
	switch ct := ContentType(strings.ToLower(strings.TrimSpace(raw))); ct {
	case ContentText, ContentImage, ContentCarousel:
		return ct, nil
	}
	return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown content type %q", raw)}
}

// ImageAsset is an image attached to a post.
type ImageAsset struct {
	Name      string
	MediaType string
	Data      []byte
}

// PublishRequest is a single user initiated publish action.
type PublishRequest struct {
	Content string
	Type    ContentType
	Images  []ImageAsset
	Targets []PlatformID
}

// Receipt is the confirmation returned by an adapter after a successful send.
type Receipt struct {
	// Note carries a user facing caveat about how the post was delivered.
	Note string
}

// Adapter publishes content to one platform.
type Adapter interface {
	Platform() PlatformID
	Send(ctx context.Context, content string, images []ImageAsset) (*Receipt, error)
}

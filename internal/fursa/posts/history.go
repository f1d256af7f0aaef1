package posts

import (
	"context"
	"fmt"
	"strings"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
)

// Post is an entry of the user's post history.
type Post struct {
	ID           string           `json:"id"`
	Content      string           `json:"content"`
	Platform     fursa.PlatformID `json:"platform"`
	Status       string           `json:"status"`
	PublishedAt  string           `json:"publishedAt"`
	Author       string           `json:"author,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	Platform fursa.PlatformID
	Status   string
	Query    string
}

// Match reports whether p passes the filter.
func (f Filter) Match(p Post) bool {
	if f.Platform != "" && p.Platform != f.Platform {
		return false
	}
	if f.Status != "" && !strings.EqualFold(p.Status, f.Status) {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" && !strings.Contains(strings.ToLower(p.Content), strings.ToLower(q)) {
		return false
	}
	return true
}

// History reads the user's post history.
type History struct {
	backend *backend.Client
}

// NewHistory constructs a history reader.
func NewHistory(b *backend.Client) *History {
	return &History{backend: b}
}

// List returns the posts matching filter, in backend order.
func (h *History) List(ctx context.Context, filter Filter) ([]Post, error) {
	var reply struct {
		Posts []Post `json:"posts"`
	}
	if err := h.backend.GetJSON(ctx, postsPath, &reply); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	out := make([]Post, 0, len(reply.Posts))
	for _, p := range reply.Posts {
		if filter.Match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

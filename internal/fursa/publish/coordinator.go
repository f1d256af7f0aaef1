package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
)

// ProgressFunc is called right before a target is attempted.
type ProgressFunc func(platform fursa.PlatformID)

// Recorder stores successful posts in the post history. Record must not block
// on the write and has no way to report failure.
type Recorder interface {
	Record(ctx context.Context, platform fursa.PlatformID, content string, publishedAt time.Time)
}

// Coordinator publishes one request to every selected platform, one platform
// at a time. It keeps no state between calls.
type Coordinator struct {
	registry *fursa.Registry
	recorder Recorder
	now      func() time.Time
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClock overrides the publish timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New constructs a Coordinator. recorder may be nil.
func New(registry *fursa.Registry, recorder Recorder, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: registry,
		recorder: recorder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish validates req and sends it to each target in order. Per-platform
// failures are reported in the result, only a validation failure is returned
// as an error.
func (c *Coordinator) Publish(ctx context.Context, req fursa.PublishRequest, onProgress ProgressFunc) (fursa.PublishResult, error) {
	if err := Validate(req); err != nil {
		return fursa.PublishResult{}, err
	}

	result := fursa.PublishResult{Outcomes: make([]fursa.PlatformOutcome, 0, len(req.Targets))}
	for _, target := range req.Targets {
		if onProgress != nil {
			onProgress(target)
		}
		outcome := c.publishTo(ctx, target, req)
		if outcome.Success {
			logutil.Infof("published to %s", target)
		} else {
			logutil.Errorf("publish to %s failed: %s", target, outcome.Error)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	logutil.Debugf("publish finished: %s", result.Summary())
	return result, nil
}

func (c *Coordinator) publishTo(ctx context.Context, target fursa.PlatformID, req fursa.PublishRequest) fursa.PlatformOutcome {
	adapter, ok := c.registry.Lookup(target)
	if !ok {
		return fursa.PlatformOutcome{Platform: target, Error: fursa.ErrUnsupportedPlatform.Error()}
	}

	receipt, err := send(ctx, adapter, req.Content, req.Images)
	if err != nil {
		return fursa.PlatformOutcome{Platform: target, Error: failureMessage(target, err)}
	}

	if c.recorder != nil {
		c.recorder.Record(ctx, target, req.Content, c.now().UTC())
	}

	outcome := fursa.PlatformOutcome{Platform: target, Success: true}
	if receipt != nil {
		outcome.Note = receipt.Note
	}
	return outcome
}

// send shields the loop from adapters that panic.
func send(ctx context.Context, adapter fursa.Adapter, content string, images []fursa.ImageAsset) (receipt *fursa.Receipt, err error) {
	defer func() {
		if r := recover(); r != nil {
			receipt = nil
			err = fmt.Errorf("%v", r)
		}
	}()
	return adapter.Send(ctx, content, images)
}

func failureMessage(target fursa.PlatformID, err error) string {
	if msg := fursa.NewPlatformError(target, err).Message; msg != "" {
		return msg
	}
	return fmt.Sprintf("failed to publish to %s", target.DisplayName())
}

// Validate checks a request before anything is sent.
func Validate(req fursa.PublishRequest) error {
	if strings.TrimSpace(req.Content) == "" {
		return &fursa.ValidationError{Field: "content", Reason: "empty content"}
	}
	if len(req.Targets) == 0 {
		return &fursa.ValidationError{Field: "targets", Reason: "no platforms selected"}
	}

	contentType := req.Type
	if contentType == "" {
		contentType = fursa.ContentText
	}
	switch n := len(req.Images); contentType {
	case fursa.ContentText:
		if n != 0 {
			return &fursa.ValidationError{Field: "images", Reason: "text posts cannot carry images"}
		}
	case fursa.ContentImage:
		if n != 1 {
			return &fursa.ValidationError{Field: "images", Reason: fmt.Sprintf("image posts need exactly one image, got %d", n)}
		}
	case fursa.ContentCarousel:
		if n == 0 {
			return &fursa.ValidationError{Field: "images", Reason: "carousel posts need at least one image"}
		}
		if n > fursa.MaxCarouselImages {
			return &fursa.ValidationError{Field: "images", Reason: fmt.Sprintf("carousel posts take at most %d images, got %d", fursa.MaxCarouselImages, n)}
		}
	default:
		return &fursa.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown content type %q", req.Type)}
	}

	for _, img := range req.Images {
		if err := fursa.ValidateImage(img); err != nil {
			return err
		}
	}
	return nil
}

package posts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fursaconnect/fursa/internal/backend"
	"github.com/fursaconnect/fursa/internal/fursa"
	"github.com/fursaconnect/fursa/internal/logutil"
	"github.com/panjf2000/ants/v2"
)

const postsPath = "/posts"

// StatusPublished marks a post that went out successfully.
const StatusPublished = "published"

type recordPayload struct {
	Platform    fursa.PlatformID `json:"platform"`
	Content     string           `json:"content"`
	Status      string           `json:"status"`
	PublishedAt string           `json:"publishedAt"`
}

// Recorder writes published posts to the backend history in the background.
// Writes are best effort: failures are logged and dropped.
type Recorder struct {
	backend *backend.Client
	pool    *ants.Pool
	wg      sync.WaitGroup
}

// NewRecorder starts a recorder with a pool of workers. When every worker is
// busy, writes wait for a free one instead of being dropped.
func NewRecorder(b *backend.Client, workers int) (*Recorder, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create recorder pool: %w", err)
	}
	return &Recorder{backend: b, pool: pool}, nil
}

// Record queues a history entry. It returns immediately.
func (r *Recorder) Record(ctx context.Context, platform fursa.PlatformID, content string, publishedAt time.Time) {
	payload := recordPayload{
		Platform:    platform,
		Content:     content,
		Status:      StatusPublished,
		PublishedAt: publishedAt.UTC().Format(time.RFC3339Nano),
	}
	// the write outlives a cancelled publish
	ctx = context.WithoutCancel(ctx)

	r.wg.Add(1)
	// Submit blocks while the pool is saturated, so it runs off the caller's
	// goroutine.
	go func() {
		err := r.pool.Submit(func() {
			defer r.wg.Done()
			if err := r.backend.PostJSON(ctx, postsPath, payload, nil); err != nil {
				logutil.Warnf("%v", &fursa.RecordingError{Platform: platform, Err: err})
				return
			}
			logutil.Debugf("recorded %s post", platform)
		})
		if err != nil {
			r.wg.Done()
			logutil.Warnf("%v", &fursa.RecordingError{Platform: platform, Err: err})
		}
	}()
}

// Close waits for queued writes, at most until ctx is done, and stops the
// workers.
func (r *Recorder) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("waiting for post history writes: %w", ctx.Err())
	}

	if releaseErr := r.pool.ReleaseTimeout(5 * time.Second); releaseErr != nil && err == nil {
		err = fmt.Errorf("release recorder pool: %w", releaseErr)
	}
	return err
}

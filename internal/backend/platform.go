package backend

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/fursaconnect/fursa/internal/fursa"
)

// PlatformError converts a failed backend call into a platform failure,
// keeping the most specific message the backend returned.
func PlatformError(platform fursa.PlatformID, err error) *fursa.PlatformError {
	if err == nil {
		return nil
	}
	var pe *fursa.PlatformError
	if errors.As(err, &pe) {
		return pe
	}

	var se *StatusError
	if errors.As(err, &se) {
		msg := se.Message
		if msg == "" {
			msg = fmt.Sprintf("%s API error: %d", platform, se.StatusCode)
		}
		return &fursa.PlatformError{Platform: platform, Status: se.StatusCode, Message: msg, Err: err}
	}

	if errors.Is(err, ErrEmptyReply) {
		return &fursa.PlatformError{Platform: platform, Message: fmt.Sprintf("%s API error: empty response", platform), Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &fursa.PlatformError{Platform: platform, Message: fmt.Sprintf("%s request timed out", platform), Err: err}
	}
	return fursa.NewPlatformError(platform, err)
}

// CheckEnvelope turns a 2xx reply reporting success:false into a platform
// failure.
func CheckEnvelope(platform fursa.PlatformID, env Envelope) error {
	if !env.Failed() {
		return nil
	}
	msg := env.Reason()
	if msg == "" {
		msg = fmt.Sprintf("%s rejected the post", platform)
	}
	return &fursa.PlatformError{Platform: platform, Message: msg}
}

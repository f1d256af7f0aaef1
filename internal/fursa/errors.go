package fursa

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedPlatform is reported for targets without an adapter.
	ErrUnsupportedPlatform = errors.New("platform not supported for posting")

	// ErrNotAuthenticated is returned when a platform needs a user identity
	// and none is available.
	ErrNotAuthenticated = errors.New("user not authenticated")
)

// MissingEnvError is returned when required configuration is missing.
type MissingEnvError struct {
	Provider  string
	Variables []string
}

func (e MissingEnvError) Error() string {
	if len(e.Variables) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Variables, ", "))
}

// ValidationError rejects a request before anything is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed (%s): %s", e.Field, e.Reason)
}

// IsValidationError checks if err is a validation error.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// PlatformError is a failure isolated to one platform.
type PlatformError struct {
	Platform PlatformID
	// Status is the HTTP status code, or 0 when no response was received.
	Status  int
	Message string
	Err     error
}

func (e *PlatformError) Error() string {
	return e.Message
}

func (e *PlatformError) Unwrap() error { return e.Err }

// NewPlatformError wraps err as a failure of platform.
func NewPlatformError(platform PlatformID, err error) *PlatformError {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return &PlatformError{Platform: platform, Message: err.Error(), Err: err}
}

// RecordingError is logged when a published post could not be stored in the
// post history. It never reaches the caller of a publish.
type RecordingError struct {
	Platform PlatformID
	Err      error
}

func (e *RecordingError) Error() string {
	return fmt.Sprintf("record %s post: %v", e.Platform, e.Err)
}

func (e *RecordingError) Unwrap() error { return e.Err }

package fursa

import "fmt"

// PlatformOutcome records what happened for a single target.
type PlatformOutcome struct {
	Platform PlatformID
	Success  bool
	// Error is set only when Success is false.
	Error string
	Note  string
}

// PublishResult holds one outcome per requested target, in request order.
type PublishResult struct {
	Outcomes []PlatformOutcome
}

// Succeeded returns the successful outcomes.
func (r PublishResult) Succeeded() []PlatformOutcome {
	return r.filter(true)
}

// Failed returns the failed outcomes.
func (r PublishResult) Failed() []PlatformOutcome {
	return r.filter(false)
}

func (r PublishResult) filter(success bool) []PlatformOutcome {
	var out []PlatformOutcome
	for _, o := range r.Outcomes {
		if o.Success == success {
			out = append(out, o)
		}
	}
	return out
}

// AllSucceeded reports whether every target was published.
func (r PublishResult) AllSucceeded() bool {
	return len(r.Outcomes) > 0 && len(r.Failed()) == 0
}

// AllFailed reports whether no target was published.
func (r PublishResult) AllFailed() bool {
	return len(r.Outcomes) > 0 && len(r.Succeeded()) == 0
}

// PartialSuccess reports a mix of published and failed targets.
func (r PublishResult) PartialSuccess() bool {
	return len(r.Succeeded()) > 0 && len(r.Failed()) > 0
}

// Summary renders the aggregate message shown after a publish.
func (r PublishResult) Summary() string {
	ok, failed := len(r.Succeeded()), len(r.Failed())
	switch {
	case len(r.Outcomes) == 0:
		return "nothing was published"
	case failed == 0:
		return fmt.Sprintf("published to %d platform(s)", ok)
	case ok == 0:
		return "failed to publish to any selected platforms"
	default:
		return fmt.Sprintf("published to %d platform(s), failed on %d platform(s)", ok, failed)
	}
}

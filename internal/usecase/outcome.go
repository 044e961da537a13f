package usecase

import (
	"context"
	stderrors "errors"
)

// Outcome is the result of one platform call: either a value or a degraded
// reason. A degraded outcome still contributes 0 to the merged stats.
type Outcome struct {
	Value  int
	Reason string
	Err    error
}

func Ok(value int) Outcome {
	return Outcome{Value: value}
}

func Degraded(reason string, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

func (o Outcome) IsDegraded() bool {
	return o.Reason != ""
}

// ValueOrZero returns the fetched value or 0 for degraded outcomes.
func (o Outcome) ValueOrZero() int {
	if o.IsDegraded() {
		return 0
	}
	return max(o.Value, 0)
}

const (
	degradedTimeout     = "timeout"
	degradedUnavailable = "source_unavailable"
	degradedThrottled   = "throttled"
	degradedUnknown     = "error"
)

func degradedReason(err error) string {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return degradedTimeout
	case IsSourceUnavailable(err):
		return degradedUnavailable
	default:
		return degradedUnknown
	}
}

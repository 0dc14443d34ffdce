// Package arbiter decides, once per control tick, whether the vision feed can be
// trusted.
package arbiter

import (
	"time"

	"github.com/tigerbot-team/linefollower/pkg/vision"
)

const (
	DefaultStalenessWindow = 200 * time.Millisecond

	// FallbackLookahead is reported when vision isn't trusted.
	FallbackLookahead = 0.0
)

type Decision struct {
	UseVision bool
	Lookahead float64

	// Age of the sample at decision time; zero if nothing was ever received.
	Age time.Duration
}

// Arbitrate trusts the sample only if it is younger than window and flagged
// valid by the vision side.
func Arbitrate(now time.Time, s vision.VisionSample, window time.Duration) Decision {
	if s.ReceivedAt.IsZero() {
		return Decision{Lookahead: FallbackLookahead}
	}
	age := now.Sub(s.ReceivedAt)
	d := Decision{
		UseVision: age < window && s.Valid,
		Lookahead: FallbackLookahead,
		Age:       age,
	}
	if d.UseVision {
		d.Lookahead = s.LkNorm
	}
	return d
}

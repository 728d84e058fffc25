package retry

import (
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// newExponential builds the exponential schedule for a policy. A zero
// MaxElapsedTime leaves the loop bounded by attempts alone.
func newExponential(p Policy) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.MaxElapsedTime = p.MaxElapsedTime
	return exp
}

// delayAfter reports the nominal delay that follows the given attempt,
// so retry callbacks can log the upcoming wait.
func (p Policy) delayAfter(attempt int) time.Duration {
	d := float64(p.InitialInterval) * math.Pow(p.Multiplier, float64(attempt))
	if d > float64(p.MaxInterval) {
		return p.MaxInterval
	}
	return time.Duration(d)
}

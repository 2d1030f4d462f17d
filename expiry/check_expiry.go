package expiry

import (
	"math"
	"time"
)

type Verdict int

const (
	Healthy Verdict = iota
	NearExpiry
	Expired
)

func (v Verdict) String() string {
	switch v {
	case Healthy:
		return "healthy"
	case NearExpiry:
		return "near-expiry"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// DaysRemaining
/**
Returns the number of whole days between `now` and the given expiry time, rounded
downwards.  The result is negative if the expiry time has already passed, and zero
if it falls within the next 24 hours.
*/
func DaysRemaining(expiresAt time.Time, now time.Time) int {
	return int(math.Floor(expiresAt.Sub(now).Hours() / 24))
}

// Classify
/**
Determines the expiry verdict for an artifact, given the number of whole days
remaining until it expires and the notification threshold in days.

The expired check must come first so that a non-positive remaining count is never
reported as near-expiry.  A threshold of zero means "only notify once actually
expired, or expiring today".

returns a constant of enum Verdict - Expired, NearExpiry or Healthy.
*/
func Classify(daysRemaining int, thresholdDays int) Verdict {
	if daysRemaining <= 0 {
		return Expired
	}
	if daysRemaining <= thresholdDays {
		return NearExpiry
	}
	return Healthy
}

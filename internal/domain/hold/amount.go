package hold

import (
	"errors"
	"fmt"
	"time"

	"rental-orchestrator/internal/domain/job"
)

var (
	ErrAmountOutOfRange = errors.New("hold amount out of range")
	ErrUnknownPurpose   = errors.New("unknown hold purpose")
)

type bounds struct {
	min, max int64
}

var amountBounds = map[job.HoldPurpose]bounds{
	job.PurposeVerification: {min: 1_000, max: 10_000},
	job.PurposeSecurity:     {min: 10_000, max: 100_000},
}

// ValidateAmount rejects hold amounts outside the sane range for the purpose.
// Verification holds are $10-$100 and security holds $100-$1000, inclusive.
func ValidateAmount(purpose job.HoldPurpose, cents int64) error {
	b, ok := amountBounds[purpose]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPurpose, purpose)
	}
	if cents < b.min || cents > b.max {
		return fmt.Errorf("%w: %s hold of %d cents must be within [%d, %d]", ErrAmountOutOfRange, purpose, cents, b.min, b.max)
	}
	return nil
}

// SecurityHoldAt is the T-minus-lead point at which the security hold is placed.
func SecurityHoldAt(pickup time.Time, lead time.Duration) time.Time {
	return pickup.Add(-lead)
}

// IsSecurityHoldDue reports whether pickup is less than lead away, i.e. the
// T-minus-lead point has already passed.
func IsSecurityHoldDue(pickup, now time.Time, lead time.Duration) bool {
	return SecurityHoldAt(pickup, lead).Before(now)
}

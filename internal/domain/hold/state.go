package hold

import (
	"errors"
	"fmt"

	"rental-orchestrator/internal/domain/booking"
)

var ErrInvalidTransition = errors.New("invalid hold state transition")

type State string

const (
	StateNone                  State = "none"
	StateVerifyHoldPending     State = "verify_hold_pending"
	StateVerifyHoldOK          State = "verify_hold_ok"
	StateSecurityHoldScheduled State = "security_hold_scheduled"
	StateSecurityHoldPlaced    State = "security_hold_placed"
	StateReleased              State = "released"
	StateFailed                State = "failed"
)

// transitions lists every legal edge. Resets back to verify_hold_ok happen on reschedule.
var transitions = map[State][]State{
	StateNone:                  {StateVerifyHoldPending},
	StateVerifyHoldPending:     {StateVerifyHoldOK, StateFailed},
	StateVerifyHoldOK:          {StateSecurityHoldScheduled, StateSecurityHoldPlaced, StateFailed},
	StateSecurityHoldScheduled: {StateSecurityHoldPlaced, StateFailed, StateVerifyHoldOK},
	StateSecurityHoldPlaced:    {StateReleased, StateVerifyHoldOK},
	StateFailed:                {StateVerifyHoldPending},
	StateReleased:              {},
}

func (s State) CanTransitionTo(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s State) Transition(next State) (State, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return next, nil
}

// StateOf projects the persisted booking onto the hold machine. A pending
// place_hold job distinguishes scheduled from merely verified.
func StateOf(b *booking.Booking, placeHoldScheduled bool) State {
	switch b.Status {
	case booking.StatusPending:
		// a pending booking either never verified or failed verification; both may retry
		return StateFailed
	case booking.StatusVerifyHoldOK:
		if placeHoldScheduled {
			return StateSecurityHoldScheduled
		}
		return StateVerifyHoldOK
	case booking.StatusSecurityHoldOK:
		if b.HasLiveHold() {
			return StateSecurityHoldPlaced
		}
		return StateReleased
	case booking.StatusSecurityHoldFailed:
		return StateFailed
	case booking.StatusReturnedOK, booking.StatusCompleted:
		if b.HasLiveHold() {
			return StateSecurityHoldPlaced
		}
		return StateReleased
	default:
		return StateNone
	}
}

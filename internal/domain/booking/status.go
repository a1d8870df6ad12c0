package booking

type Status string

const (
	StatusPending            Status = "pending"
	StatusVerifyHoldOK       Status = "verify_hold_ok"
	StatusSecurityHoldOK     Status = "security_hold_ok"
	StatusSecurityHoldFailed Status = "security_hold_failed"
	StatusReturnedOK         Status = "returned_ok"
	StatusCompleted          Status = "completed"
	StatusCanceled           Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusVerifyHoldOK, StatusSecurityHoldOK, StatusSecurityHoldFailed,
		StatusReturnedOK, StatusCompleted, StatusCanceled:
		return true
	default:
		return false
	}
}

// IsReleasable reports whether the equipment is back and the hold may go.
func (s Status) IsReleasable() bool {
	return s == StatusReturnedOK || s == StatusCompleted
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

package job

type Type string

const (
	TypePlaceHold               Type = "place_hold"
	TypeReleaseHold             Type = "release_hold"
	TypeSendReminder            Type = "send_reminder"
	TypeCheckInsurance          Type = "check_insurance"
	TypeAutoCancelOnHoldFailure Type = "auto_cancel_on_hold_failure"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case TypePlaceHold, TypeReleaseHold, TypeSendReminder, TypeCheckInsurance, TypeAutoCancelOnHoldFailure:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the job still occupies its idempotency key.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusProcessing
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCanceled
}

// OutcomeKind classifies a successful handler run.
type OutcomeKind string

const (
	OutcomeDone           OutcomeKind = "done"
	OutcomeSkipped        OutcomeKind = "skipped"
	OutcomeRequiresAction OutcomeKind = "requires_action"
)

type Outcome struct {
	Kind OutcomeKind
	Note string
}

func Done() Outcome {
	return Outcome{Kind: OutcomeDone}
}

func Skipped(note string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Note: note}
}

func RequiresAction(note string) Outcome {
	return Outcome{Kind: OutcomeRequiresAction, Note: note}
}

package job

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownType    = errors.New("unknown job type")
	ErrInvalidPayload = errors.New("invalid job payload")
)

// Payload is the typed metadata carried by a job. Each job type has exactly one payload shape.
type Payload interface {
	JobType() Type
}

type HoldPurpose string

const (
	PurposeVerification HoldPurpose = "verification"
	PurposeSecurity     HoldPurpose = "security"
)

type PlaceHoldPayload struct {
	Purpose     HoldPurpose `json:"purpose"`
	AmountCents int64       `json:"amount_cents"`
	PickupAt    time.Time   `json:"pickup_at"`
}

func (PlaceHoldPayload) JobType() Type { return TypePlaceHold }

type ReleaseHoldPayload struct {
	ReturnDueAt time.Time `json:"return_due_at"`
}

func (ReleaseHoldPayload) JobType() Type { return TypeReleaseHold }

type ReminderKind string

const (
	ReminderPickup ReminderKind = "pickup"
	ReminderReturn ReminderKind = "return"
)

type ReminderPayload struct {
	Kind ReminderKind `json:"kind"`
}

func (ReminderPayload) JobType() Type { return TypeSendReminder }

type InsuranceCheckPayload struct {
	PickupAt time.Time `json:"pickup_at"`
}

func (InsuranceCheckPayload) JobType() Type { return TypeCheckInsurance }

type AutoCancelPayload struct {
	FailedAt time.Time `json:"failed_at"`
	Reason   string    `json:"reason"`
}

func (AutoCancelPayload) JobType() Type { return TypeAutoCancelOnHoldFailure }

func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// DecodePayload resolves raw metadata into the payload type registered for t.
// Empty metadata decodes to the zero payload.
func DecodePayload(t Type, raw []byte) (Payload, error) {
	var (
		p   Payload
		err error
	)
	switch t {
	case TypePlaceHold:
		var v PlaceHoldPayload
		err = unmarshalOptional(raw, &v)
		p = v
	case TypeReleaseHold:
		var v ReleaseHoldPayload
		err = unmarshalOptional(raw, &v)
		p = v
	case TypeSendReminder:
		var v ReminderPayload
		err = unmarshalOptional(raw, &v)
		p = v
	case TypeCheckInsurance:
		var v InsuranceCheckPayload
		err = unmarshalOptional(raw, &v)
		p = v
	case TypeAutoCancelOnHoldFailure:
		var v AutoCancelPayload
		err = unmarshalOptional(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, t, err)
	}
	return p, nil
}

func unmarshalOptional(raw []byte, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

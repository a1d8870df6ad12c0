package booking

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

type InsuranceDocument struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Status     DocumentStatus
	ExpiresAt  time.Time
}

// InsuranceAssessment splits approved documents by how close they are to expiry.
type InsuranceAssessment struct {
	Expired      []InsuranceDocument
	ExpiringSoon []InsuranceDocument
	ValidCount   int
}

func (a InsuranceAssessment) HasExpired() bool {
	return len(a.Expired) > 0
}

// ShouldWarnExpiringSoon is only raised while some approved document is still valid.
func (a InsuranceAssessment) ShouldWarnExpiringSoon() bool {
	return a.ValidCount > 0 && len(a.ExpiringSoon) > 0
}

func AssessInsurance(docs []InsuranceDocument, now time.Time, horizon time.Duration) InsuranceAssessment {
	var out InsuranceAssessment
	cutoff := now.Add(horizon)

	for _, d := range docs {
		if d.Status != DocumentApproved {
			continue
		}
		if !d.ExpiresAt.After(now) {
			out.Expired = append(out.Expired, d)
			continue
		}
		out.ValidCount++
		if !d.ExpiresAt.After(cutoff) {
			out.ExpiringSoon = append(out.ExpiringSoon, d)
		}
	}
	return out
}

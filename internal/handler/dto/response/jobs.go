package response

import (
	"time"

	"rental-orchestrator/internal/usecase/commands"
	"rental-orchestrator/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type DispatchResponse struct {
	Success   bool   `json:"success"`
	Processed int    `json:"processed"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
	Error     string `json:"error,omitempty"`
}

func FromDispatchSummary(s *commands.DispatchSummary) *DispatchResponse {
	return &DispatchResponse{
		Success:   true,
		Processed: s.Processed,
		Successes: s.Successes,
		Failures:  s.Failures,
	}
}

type JobResponse struct {
	ID             string     `json:"id"`
	BookingID      string     `json:"booking_id"`
	JobType        string     `json:"job_type"`
	Status         string     `json:"status"`
	RunAt          time.Time  `json:"run_at"`
	RetryCount     int        `json:"retry_count"`
	MaxRetries     int        `json:"max_retries"`
	IdempotencyKey string     `json:"idempotency_key"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	ResultNote     *string    `json:"result_note,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

var uuidToString = copier.TypeConverter{
	SrcType: uuid.UUID{},
	DstType: copier.String,
	Fn: func(src any) (any, error) {
		return src.(uuid.UUID).String(), nil
	},
}

func FromJobViews(views []*queries.JobView) ([]JobResponse, error) {
	res := make([]JobResponse, len(views))
	for i, v := range views {
		if err := copier.CopyWithOption(&res[i], v, copier.Option{
			DeepCopy:   true,
			Converters: []copier.TypeConverter{uuidToString},
		}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type JobStatusCountResponse struct {
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

func FromStatusCounts(counts []queries.JobStatusCount) *JobStatusCountResponse {
	resp := &JobStatusCountResponse{Counts: make(map[string]int64, len(counts))}
	for _, c := range counts {
		resp.Counts[c.Status] = c.Count
		resp.Total += c.Count
	}
	return resp
}

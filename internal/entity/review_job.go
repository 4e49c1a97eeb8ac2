package entity

import (
	"time"

	"github.com/joseph-ayodele/roastume/constants"
)

// ReviewJob is one submitted document's review lifecycle.
type ReviewJob struct {
	ID           string              `json:"review_id"`
	Status       constants.JobStatus `json:"status"`
	Result       *Report             `json:"review,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewReviewJob returns a PENDING job stamped with now.
func NewReviewJob(id string, now time.Time) *ReviewJob {
	return &ReviewJob{
		ID:        id,
		Status:    constants.JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy so callers never share state with the store.
func (j *ReviewJob) Clone() *ReviewJob {
	if j == nil {
		return nil
	}
	out := *j
	if j.Result != nil {
		out.Result = j.Result.Clone()
	}
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		out.ErrorMessage = &msg
	}
	return &out
}

// Error returns the failure reason or "".
func (j *ReviewJob) Error() string {
	if j.ErrorMessage == nil {
		return ""
	}
	return *j.ErrorMessage
}

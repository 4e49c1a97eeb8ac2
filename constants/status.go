package constants

// JobStatus is the canonical status of a review job.
type JobStatus string

// Stable values (exposed verbatim over the API).
const (
	JobStatusPending    JobStatus = "PENDING"    // accepted, not started
	JobStatusProcessing JobStatus = "PROCESSING" // extraction/generation in progress
	JobStatusCompleted  JobStatus = "COMPLETED"  // terminal, report available
	JobStatusFailed     JobStatus = "FAILED"     // terminal, error message available
)

// IsTerminal reports whether no further transitions can leave s.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// CanTransition reports whether s -> to is a legal edge of the job state machine.
// PENDING -> FAILED exists only for jobs refused by a draining scheduler.
func (s JobStatus) CanTransition(to JobStatus) bool {
	switch s {
	case JobStatusPending:
		return to == JobStatusProcessing || to == JobStatusFailed
	case JobStatusProcessing:
		return to == JobStatusCompleted || to == JobStatusFailed
	default:
		return false
	}
}

func (s JobStatus) String() string { return string(s) }

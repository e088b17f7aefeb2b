// Package jobs implements the job application tracker: the job model,
// the status rules and the service the HTTP layer calls into.
package jobs

import (
	"time"

	"github.com/google/uuid"
)

// Status is the state of a job application.
type Status string

const (
	StatusApplied       Status = "Applied"
	StatusNotResponded  Status = "Not Responded"
	StatusRejected      Status = "Rejected"
	StatusHRContacted   Status = "HR Contacted"
	StatusAdmitted      Status = "Admitted"
	StatusUserInterview Status = "User Interview"
)

// StatusSet is the set of statuses a job may be in. The set is
// configuration, not hardcoded logic: the service validates writes
// against it and the frontend builds its filters from the same list.
type StatusSet []Status

// DefaultStatuses is the canonical status set.
var DefaultStatuses = StatusSet{
	StatusApplied,
	StatusNotResponded,
	StatusRejected,
	StatusHRContacted,
	StatusAdmitted,
	StatusUserInterview,
}

// Contains reports whether s is a member of the set.
func (set StatusSet) Contains(s Status) bool {
	for _, member := range set {
		if member == s {
			return true
		}
	}
	return false
}

// Job contains the data for a single job application.
//
// Status holds what the user last set, not what the frontend shows.
// Reads pass it through DeriveStatus first. AppliedAt is set once at
// creation and never modified.
type Job struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Company        string
	Position       string
	Detail         string
	ApplyVia       string
	Type           string
	City           string
	Description    string
	Qualifications []string
	Status         Status
	AppliedAt      time.Time
}

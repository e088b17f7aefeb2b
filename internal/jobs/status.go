package jobs

import "time"

const day = 24 * time.Hour

// DeriveStatus computes the status shown to the user from the stored
// status and the time elapsed since the application.
//
// Only "Applied" is ever rewritten: after 14 full days without a manual
// update the application is shown as "Not Responded", after 30 as
// "Rejected". Any other stored status is a manual override and wins
// unconditionally. Partial days round down, so a job is still "Applied"
// at exactly 14 days and still "Not Responded" at exactly 30.
//
// The result is never written back to the store.
func DeriveStatus(stored Status, appliedAt, now time.Time) Status {
	if stored != StatusApplied {
		return stored
	}

	daysPassed := int(now.Sub(appliedAt) / day)

	switch {
	case daysPassed > 30:
		return StatusRejected
	case daysPassed > 14:
		return StatusNotResponded
	default:
		return StatusApplied
	}
}

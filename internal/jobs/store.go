package jobs

import (
	"context"

	"github.com/google/uuid"
)

// JobFilter is used to filter jobs.
// Returned jobs must match all the provided fields.
// If a field is empty or nil, it's ignored.
type JobFilter struct {
	IDs     []uuid.UUID
	UserIDs []uuid.UUID
}

// Store provides access to the job store.
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx is a transaction. If an error occurs on any of the methods, the
// transaction is considered to have failed and should be rolled back.
// Tx is not safe for concurrent use.
type Tx interface {
	Commit() error
	Rollback() error

	CreateJob(j *Job) error
	UpdateJob(j *Job) error
	DeleteJobs(filter *JobFilter) (int, error)
	FindJobs(filter *JobFilter) ([]Job, error)
}

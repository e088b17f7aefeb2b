package db

import (
	"database/sql"

	"github.com/jobtrack-app/jobtrack/internal/jobs"
)

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// CreateJob creates a job in the database.
// The caller must have assigned the job an ID.
func (t *Tx) CreateJob(j *jobs.Job) error {
	return insertJob(t.tx.Exec, j)
}

// UpdateJob updates a job in the database.
// It returns errorz.ErrNotFound if no job is found.
func (t *Tx) UpdateJob(j *jobs.Job) error {
	return updateJob(t.tx.Exec, j)
}

// DeleteJobs deletes all jobs matching the provided filter and returns
// how many rows were removed. Deleting nothing is not an error.
func (t *Tx) DeleteJobs(filter *jobs.JobFilter) (int, error) {
	return deleteJobs(t.tx.Exec, filter)
}

// FindJobs queries for jobs based on the provided filter.
// It returns an empty slice if no jobs are found.
func (t *Tx) FindJobs(filter *jobs.JobFilter) ([]jobs.Job, error) {
	return selectJobs(t.tx.Query, filter)
}

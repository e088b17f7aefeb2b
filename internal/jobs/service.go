package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
)

var (
	errRequired      = errors.New("is required")
	errUnknownStatus = errors.New("unknown status")
)

// NewJob is the input for creating a job application.
type NewJob struct {
	Company  string
	Position string
	Detail   string
	ApplyVia string
}

// FieldsPatch is a partial update of a job's descriptive fields.
// Nil fields are left unchanged. Status and AppliedAt are deliberately
// not part of the patch, status changes go through UpdateStatus and
// AppliedAt is immutable.
type FieldsPatch struct {
	Company        *string
	Position       *string
	Detail         *string
	ApplyVia       *string
	Type           *string
	City           *string
	Description    *string
	Qualifications *[]string
}

// ListFilter narrows down List results.
type ListFilter struct {
	// Status filters on the derived status, matching what the user
	// sees in the list, not what is stored.
	Status Status
}

// Service provides the rules for working with job applications.
//
// Every operation is scoped to the owner passed in: jobs belonging to
// other users are treated as if they don't exist.
type Service struct {
	store    Store
	statuses StatusSet

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(store Store, statuses StatusSet) *Service {
	return &Service{
		store:    store,
		statuses: statuses,
		NowFunc:  time.Now,
	}
}

// Statuses returns the configured status set.
func (s *Service) Statuses() StatusSet {
	return s.statuses
}

// List returns the owner's jobs in insertion order, each with its
// derived status.
func (s *Service) List(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]Job, error) {
	if filter.Status != "" && !s.statuses.Contains(filter.Status) {
		return nil, errorz.InvalidInput{errorz.Keyed{Key: "status", Err: errUnknownStatus}}
	}

	var found []Job
	err := s.inTx(ctx, func(tx Tx) error {
		var txErr error
		found, txErr = tx.FindJobs(&JobFilter{
			UserIDs: []uuid.UUID{owner},
		})
		return txErr
	})
	if err != nil {
		return nil, err
	}

	now := s.NowFunc()

	out := make([]Job, 0, len(found))
	for _, j := range found {
		j.Status = DeriveStatus(j.Status, j.AppliedAt, now)
		if filter.Status != "" && j.Status != filter.Status {
			continue
		}
		out = append(out, j)
	}

	return out, nil
}

// Create validates in and persists a new job application for owner.
// The job starts out as "Applied" with AppliedAt set to now.
func (s *Service) Create(ctx context.Context, owner uuid.UUID, in NewJob) (Job, error) {
	var invalid errorz.InvalidInput
	if strings.TrimSpace(in.Company) == "" {
		invalid = append(invalid, errorz.Keyed{Key: "company", Err: errRequired})
	}
	if strings.TrimSpace(in.Position) == "" {
		invalid = append(invalid, errorz.Keyed{Key: "position", Err: errRequired})
	}
	if len(invalid) > 0 {
		return Job{}, invalid
	}

	job := Job{
		ID:             uuid.New(),
		UserID:         owner,
		Company:        in.Company,
		Position:       in.Position,
		Detail:         in.Detail,
		ApplyVia:       in.ApplyVia,
		Qualifications: []string{},
		Status:         StatusApplied,
		AppliedAt:      s.NowFunc(),
	}

	err := s.inTx(ctx, func(tx Tx) error {
		return tx.CreateJob(&job)
	})
	if err != nil {
		return Job{}, err
	}

	return job, nil
}

// Get returns the job with the given id if owner owns it. The returned
// job carries its derived status.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (Job, error) {
	var job Job
	err := s.inTx(ctx, func(tx Tx) error {
		var txErr error
		job, txErr = findOwnedJob(tx, owner, id)
		return txErr
	})
	if err != nil {
		return Job{}, err
	}

	job.Status = DeriveStatus(job.Status, job.AppliedAt, s.NowFunc())

	return job, nil
}

// UpdateStatus sets the stored status of the job with the given id.
// The new status must be a member of the configured status set.
func (s *Service) UpdateStatus(ctx context.Context, owner, id uuid.UUID, status Status) error {
	if !s.statuses.Contains(status) {
		return errorz.InvalidInput{errorz.Keyed{Key: "status", Err: errUnknownStatus}}
	}

	return s.inTx(ctx, func(tx Tx) error {
		job, txErr := findOwnedJob(tx, owner, id)
		if txErr != nil {
			return txErr
		}

		job.Status = status

		return tx.UpdateJob(&job)
	})
}

// UpdateFields applies a partial update to the job's descriptive fields
// and returns the updated job with its derived status.
//
// Company and position can be changed but not blanked out.
func (s *Service) UpdateFields(ctx context.Context, owner, id uuid.UUID, patch FieldsPatch) (Job, error) {
	var invalid errorz.InvalidInput
	if patch.Company != nil && strings.TrimSpace(*patch.Company) == "" {
		invalid = append(invalid, errorz.Keyed{Key: "company", Err: errRequired})
	}
	if patch.Position != nil && strings.TrimSpace(*patch.Position) == "" {
		invalid = append(invalid, errorz.Keyed{Key: "position", Err: errRequired})
	}
	if len(invalid) > 0 {
		return Job{}, invalid
	}

	var job Job
	err := s.inTx(ctx, func(tx Tx) error {
		var txErr error
		job, txErr = findOwnedJob(tx, owner, id)
		if txErr != nil {
			return txErr
		}

		applyPatch(&job, patch)

		return tx.UpdateJob(&job)
	})
	if err != nil {
		return Job{}, err
	}

	job.Status = DeriveStatus(job.Status, job.AppliedAt, s.NowFunc())

	return job, nil
}

// Delete removes the job with the given id if owner owns it. Deleting
// an id that does not exist (or is owned by someone else) is not an
// error, delete is idempotent.
func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.inTx(ctx, func(tx Tx) error {
		_, txErr := tx.DeleteJobs(&JobFilter{
			IDs:     []uuid.UUID{id},
			UserIDs: []uuid.UUID{owner},
		})
		return txErr
	})
}

// DayCount is the number of applications created on a single day.
type DayCount struct {
	Date  string
	Count int
}

// StatusCount is the number of applications with a derived status.
type StatusCount struct {
	Status Status
	Count  int
}

// Stats are the aggregates behind the dashboard charts.
type Stats struct {
	PerDay    []DayCount
	PerStatus []StatusCount
}

// Stats aggregates the owner's jobs: applications per day (by the date
// part of AppliedAt, ascending) and a breakdown by derived status in
// the configured set's order.
func (s *Service) Stats(ctx context.Context, owner uuid.UUID) (Stats, error) {
	jobs, err := s.List(ctx, owner, ListFilter{})
	if err != nil {
		return Stats{}, err
	}

	perDay := make(map[string]int)
	perStatus := make(map[Status]int)
	for _, j := range jobs {
		perDay[j.AppliedAt.Format(time.DateOnly)]++
		perStatus[j.Status]++
	}

	stats := Stats{
		PerDay:    make([]DayCount, 0, len(perDay)),
		PerStatus: make([]StatusCount, 0, len(perStatus)),
	}

	for date, count := range perDay {
		stats.PerDay = append(stats.PerDay, DayCount{Date: date, Count: count})
	}
	sort.Slice(stats.PerDay, func(i, k int) bool {
		return stats.PerDay[i].Date < stats.PerDay[k].Date
	})

	for _, status := range s.statuses {
		if count := perStatus[status]; count > 0 {
			stats.PerStatus = append(stats.PerStatus, StatusCount{Status: status, Count: count})
		}
	}

	return stats, nil
}

// findOwnedJob finds the job with the given id owned by owner.
// A job owned by someone else results in errorz.ErrNotFound, existence
// of other users' jobs must not leak.
func findOwnedJob(tx Tx, owner, id uuid.UUID) (Job, error) {
	found, err := tx.FindJobs(&JobFilter{
		IDs:     []uuid.UUID{id},
		UserIDs: []uuid.UUID{owner},
	})
	if err != nil {
		return Job{}, err
	}

	if len(found) != 1 {
		return Job{}, fmt.Errorf("job %s: %w", id, errorz.ErrNotFound)
	}

	return found[0], nil
}

func applyPatch(job *Job, patch FieldsPatch) {
	if patch.Company != nil {
		job.Company = *patch.Company
	}
	if patch.Position != nil {
		job.Position = *patch.Position
	}
	if patch.Detail != nil {
		job.Detail = *patch.Detail
	}
	if patch.ApplyVia != nil {
		job.ApplyVia = *patch.ApplyVia
	}
	if patch.Type != nil {
		job.Type = *patch.Type
	}
	if patch.City != nil {
		job.City = *patch.City
	}
	if patch.Description != nil {
		job.Description = *patch.Description
	}
	if patch.Qualifications != nil {
		job.Qualifications = *patch.Qualifications
	}
}

func (s *Service) inTx(ctx context.Context, f func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	err = f(tx)
	if err != nil {
		rBackErr := tx.Rollback()
		if rBackErr != nil {
			err = errors.Join(err, rBackErr)
		}
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}

	return nil
}

package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
	"github.com/jobtrack-app/jobtrack/internal/jobs"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

const jobColumns = `id, user_id, company, position, detail, apply_via, job_type, city, description, qualifications, status, applied_at`

func insertJob(ef execFunc, j *jobs.Job) error {
	if j.ID == uuid.Nil || j.UserID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	quals, err := marshalQualifications(j.Qualifications)
	if err != nil {
		return err
	}

	const q = `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = ef(q,
		j.ID, j.UserID, j.Company, j.Position, j.Detail, j.ApplyVia,
		j.Type, j.City, j.Description, quals, string(j.Status), j.AppliedAt,
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

// updateJob writes all mutable columns. AppliedAt is immutable and
// deliberately absent from the SET clause.
func updateJob(ef execFunc, j *jobs.Job) error {
	quals, err := marshalQualifications(j.Qualifications)
	if err != nil {
		return err
	}

	const q = `UPDATE jobs SET
		company = ?, position = ?, detail = ?, apply_via = ?, job_type = ?,
		city = ?, description = ?, qualifications = ?, status = ?
		WHERE id = ?`

	result, err := ef(q,
		j.Company, j.Position, j.Detail, j.ApplyVia, j.Type,
		j.City, j.Description, quals, string(j.Status), j.ID,
	)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errorz.MapDBErr(err)
	}

	if rows == 0 {
		return fmt.Errorf("job not found: %w", errorz.ErrNotFound)
	}

	return nil
}

func deleteJobs(ef execFunc, f *jobs.JobFilter) (int, error) {
	query := `DELETE FROM jobs WHERE 1=1`
	params := make([]any, 0)

	query, params = applyFilter(query, params, f)

	result, err := ef(query, params...)
	if err != nil {
		return 0, errorz.MapDBErr(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errorz.MapDBErr(err)
	}

	return int(rows), nil
}

func selectJobs(qf queryFunc, f *jobs.JobFilter) ([]jobs.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	params := make([]any, 0)

	query, params = applyFilter(query, params, f)

	// rowid order is insertion order, the contract List exposes.
	query += ` ORDER BY rowid ASC`

	rows, err := qf(query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]jobs.Job, 0)
	for rows.Next() {
		var (
			j      jobs.Job
			quals  string
			status string
		)
		err := rows.Scan(
			&j.ID, &j.UserID, &j.Company, &j.Position, &j.Detail, &j.ApplyVia,
			&j.Type, &j.City, &j.Description, &quals, &status, &j.AppliedAt,
		)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		j.Status = jobs.Status(status)

		j.Qualifications, err = unmarshalQualifications(quals)
		if err != nil {
			return nil, err
		}

		out = append(out, j)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
}

func applyFilter(query string, params []any, f *jobs.JobFilter) (string, []any) {
	if len(f.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(f.IDs)) + `)`
		params = append(params, anySlice(f.IDs)...)
	}

	if len(f.UserIDs) > 0 {
		query += ` AND user_id IN (` + placeholders(len(f.UserIDs)) + `)`
		params = append(params, anySlice(f.UserIDs)...)
	}

	return query, params
}

// Qualifications are an ordered list, they are stored as a JSON array
// in a single column.
func marshalQualifications(quals []string) (string, error) {
	if quals == nil {
		quals = []string{}
	}

	b, err := json.Marshal(quals)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func unmarshalQualifications(raw string) ([]string, error) {
	quals := make([]string, 0)
	if err := json.Unmarshal([]byte(raw), &quals); err != nil {
		return nil, fmt.Errorf("malformed qualifications column: %w", err)
	}

	return quals, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func anySlice[T any](s []T) []any {
	out := make([]any, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}

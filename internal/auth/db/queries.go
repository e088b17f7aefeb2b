package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/auth"
	"github.com/jobtrack-app/jobtrack/internal/email"
	"github.com/jobtrack-app/jobtrack/internal/errorz"
)

type execFunc func(query string, params ...any) (sql.Result, error)
type queryFunc func(query string, params ...any) (*sql.Rows, error)

func insertUser(ef execFunc, u *auth.User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("zero uuid provided: %w", errorz.ErrConstraintViolated)
	}

	const q = `INSERT INTO users (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := ef(q, u.ID, string(u.Email), u.Name, u.PasswordHash.String(), u.CreatedAt)
	if err != nil {
		return errorz.MapDBErr(err)
	}

	return nil
}

func selectUsers(qf queryFunc, f *auth.UserFilter) ([]auth.User, error) {
	query := `SELECT id, email, name, password_hash, created_at FROM users WHERE 1=1`
	params := make([]any, 0)

	if len(f.IDs) > 0 {
		query += ` AND id IN (` + placeholders(len(f.IDs)) + `)`
		params = append(params, anySlice(f.IDs)...)
	}

	if len(f.Emails) > 0 {
		query += ` AND email IN (` + placeholders(len(f.Emails)) + `)`
		for _, addr := range f.Emails {
			params = append(params, string(addr))
		}
	}

	// rowid order is insertion order, "first match wins" depends on it.
	query += ` ORDER BY rowid ASC`

	rows, err := qf(query, params...)
	if err != nil {
		return nil, errorz.MapDBErr(err)
	}

	defer rows.Close()

	out := make([]auth.User, 0)
	for rows.Next() {
		var (
			u    auth.User
			addr string
		)
		err := rows.Scan(&u.ID, &addr, &u.Name, &u.PasswordHash, &u.CreatedAt)
		if err != nil {
			return nil, errorz.MapDBErr(err)
		}

		u.Email, err = email.ParseAddress(addr)
		if err != nil {
			return nil, err
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, errorz.MapDBErr(err)
	}

	return out, nil
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

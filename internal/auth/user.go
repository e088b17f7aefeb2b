package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/email"
	"github.com/jobtrack-app/jobtrack/internal/krypto"
)

// User contains the data for a user. Users are created lazily on their
// first login and are never updated or deleted afterwards.
type User struct {
	ID           uuid.UUID
	Email        email.Address
	Name         string
	PasswordHash krypto.Argon2Hash
	CreatedAt    time.Time
}

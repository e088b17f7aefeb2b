package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/email"
	"github.com/jobtrack-app/jobtrack/internal/krypto"
)

// ErrInvalidToken indicates a bearer token did not verify. All failure
// modes (malformed, forged, expired) intentionally map to this single
// error, callers must not be able to tell them apart.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenExpiry is how long issued tokens remain valid.
const DefaultTokenExpiry = 7 * 24 * time.Hour

// Claims identify the user a bearer token was issued to.
type Claims struct {
	UserID uuid.UUID
	Email  email.Address
}

// tokenClaims is the wire representation of Claims.
type tokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies bearer tokens. Both operations are
// pure computations on the process-wide secret key.
type TokenService struct {
	key    krypto.Key
	expiry time.Duration

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewTokenService(key krypto.Key, expiry time.Duration) *TokenService {
	return &TokenService{
		key:     key,
		expiry:  expiry,
		NowFunc: time.Now,
	}
}

// Sign issues a token for the provided claims, valid from now until the
// configured expiry.
func (s *TokenService) Sign(c Claims) (string, error) {
	now := s.NowFunc()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &tokenClaims{
		UserID: c.UserID.String(),
		Email:  string(c.Email),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	})

	return token.SignedString(s.key.SecretValue())
}

// Verify checks the signature and expiry of raw and returns the claims
// it carries. Any failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(raw string) (Claims, error) {
	var wire tokenClaims

	token, err := jwt.ParseWithClaims(raw, &wire, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key.SecretValue(), nil
	}, jwt.WithTimeFunc(func() time.Time {
		return s.NowFunc()
	}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(wire.UserID)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	addr, err := email.ParseAddress(wire.Email)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		UserID: userID,
		Email:  addr,
	}, nil
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jobtrack-app/jobtrack/internal/email"
)

// ErrWrongPassword indicates the provided password does not match the
// stored hash for an existing user.
var ErrWrongPassword = errors.New("wrong password")

// Credentials are the email address and password a user logs in with.
type Credentials struct {
	Email    email.Address
	Password Password
}

// Service is the type that provides the main rules for authentication.
type Service struct {
	store  Store
	tokens *TokenService

	// NowFunc is used to get the current time.
	// Exposed for testing purposes.
	NowFunc func() time.Time
}

func NewService(s Store, tokens *TokenService) *Service {
	return &Service{
		store:   s,
		tokens:  tokens,
		NowFunc: time.Now,
	}
}

// LoginResult is what a successful login returns to the caller.
type LoginResult struct {
	Token string
	Name  string
}

// Login authenticates the provided credentials and issues a bearer token.
//
// An email address that was never seen before creates a new user on the
// spot, there is no separate registration step. For an existing user the
// password must match the stored hash, otherwise ErrWrongPassword is
// returned and no token is issued.
func (s *Service) Login(ctx context.Context, c Credentials) (LoginResult, error) {
	var user User

	err := s.inTx(ctx, func(tx Tx) error {
		users, txErr := tx.FindUsers(&UserFilter{
			Emails: []email.Address{c.Email},
		})
		if txErr != nil {
			return txErr
		}

		if len(users) == 0 {
			// First login with this email address, create the user.
			// Only the hash of the password is stored.
			pwdHash, txErr := c.Password.Hash()
			if txErr != nil {
				return txErr
			}

			user = User{
				ID:           uuid.New(),
				Email:        c.Email,
				Name:         c.Email.LocalPart(),
				PasswordHash: pwdHash,
				CreatedAt:    s.NowFunc(),
			}

			return tx.CreateUser(&user)
		}

		// The email column is not unique, the first match wins.
		user = users[0]

		if !c.Password.Match(user.PasswordHash) {
			return ErrWrongPassword
		}

		return nil
	})
	if err != nil {
		return LoginResult{}, err
	}

	token, err := s.tokens.Sign(Claims{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token: token,
		Name:  user.Name,
	}, nil
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

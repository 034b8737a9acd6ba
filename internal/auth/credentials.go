// Package auth holds the credential store and the session token authority.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/movienight/internal/db"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/repository"
)

// UserStorage is the persistence the credential store needs.
type UserStorage interface {
	Create(ctx context.Context, user *db.User) error
	GetByUsername(ctx context.Context, username string) (*db.User, error)
}

// CredentialStore registers users and checks their passwords.
type CredentialStore struct {
	users UserStorage
	cost  int
}

// NewCredentialStore creates a store hashing with bcrypt at cost.
// A cost of 0 means bcrypt.DefaultCost.
func NewCredentialStore(users UserStorage, cost int) *CredentialStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &CredentialStore{users: users, cost: cost}
}

// Register creates a user with a bcrypt password hash.
func (s *CredentialStore) Register(ctx context.Context, username, password, fullName string) (*db.User, error) {
	if username == "" || password == "" || fullName == "" {
		return nil, svcErr.InvalidArgument("Missing data")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, svcErr.InvalidArgument("Password is too long")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &db.User{Username: username, PasswordHash: string(hash), FullName: fullName}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &svcErr.Error{
				Kind:    svcErr.KindConflict,
				Message: duplicateDetail(username),
				Err:     err,
			}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate fetches the user and compares the password hash.
// Unknown users and wrong passwords fail the same way.
func (s *CredentialStore) Authenticate(ctx context.Context, username, password string) (*db.User, error) {
	if username == "" || password == "" {
		return nil, svcErr.InvalidArgument("Missing data")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		// unknown usernames cost one bcrypt compare too
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, svcErr.Unauthenticated("Unable to authenticate")
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, svcErr.Unauthenticated("Unable to authenticate")
	}
	return user, nil
}

func duplicateDetail(username string) string {
	return fmt.Sprintf("Key (username)=(%s) already exists.", strings.TrimSpace(username))
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("movienight-dummy"), bcrypt.DefaultCost)

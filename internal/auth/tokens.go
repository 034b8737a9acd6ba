package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/repository"
)

// TokenStorage is the persistent side of the token authority.
type TokenStorage interface {
	Insert(ctx context.Context, userID uint64, token string) error
	UserForValidToken(ctx context.Context, token string) (uint64, error)
	InvalidateAll(ctx context.Context, userID uint64) error
}

// TokenCache speeds up Validate. The store stays the source of truth.
type TokenCache interface {
	CacheToken(ctx context.Context, token string, userID uint64) error
	TokenUser(ctx context.Context, token string) (uint64, bool, error)
	EvictToken(ctx context.Context, token string, userID uint64) error
	PurgeUserTokens(ctx context.Context, userID uint64) error
}

// TokenAuthority issues, validates and revokes opaque session tokens.
// Tokens never expire on their own; RevokeAll is the only way to end them.
type TokenAuthority struct {
	store  TokenStorage
	cache  TokenCache
	logger *slog.Logger
	newID  func() string
}

// NewTokenAuthority creates an authority. cache may be nil.
func NewTokenAuthority(store TokenStorage, cache TokenCache, logger *slog.Logger) *TokenAuthority {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenAuthority{store: store, cache: cache, logger: logger, newID: uuid.NewString}
}

// Issue creates and persists a new valid token for userID.
func (a *TokenAuthority) Issue(ctx context.Context, userID uint64) (string, error) {
	token := a.newID()
	if err := a.store.Insert(ctx, userID, token); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Validate resolves token to its user.
//
// Behavior:
//   - Empty token fails with "Missing token".
//   - Unknown and revoked tokens fail alike with "Could not authenticate".
//   - Cache hits skip the store; cache errors fall back to the store.
//   - After caching a store hit the store is read again. A RevokeAll that
//     committed in between either purges the new entry itself or is seen by
//     the second read, in which case the entry is evicted here.
func (a *TokenAuthority) Validate(ctx context.Context, token string) (uint64, error) {
	if token == "" {
		return 0, svcErr.Unauthenticated("Missing token")
	}

	if a.cache != nil {
		userID, ok, err := a.cache.TokenUser(ctx, token)
		if err != nil {
			a.logger.Warn("token cache read failed", "err", err)
		} else if ok {
			return userID, nil
		}
	}

	userID, err := a.store.UserForValidToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, svcErr.Unauthenticated("Could not authenticate")
	}
	if err != nil {
		return 0, svcErr.Upstream("Could not authenticate", err)
	}

	if a.cache == nil {
		return userID, nil
	}
	if err := a.cache.CacheToken(ctx, token, userID); err != nil {
		a.logger.Warn("token cache write failed", "user_id", userID, "err", err)
		return userID, nil
	}

	_, err = a.store.UserForValidToken(ctx, token)
	switch {
	case err == nil:
		return userID, nil
	case errors.Is(err, repository.ErrNotFound):
		a.evict(ctx, token, userID)
		return 0, svcErr.Unauthenticated("Could not authenticate")
	default:
		// the first read still stands, but the entry can no longer be trusted
		a.evict(ctx, token, userID)
		return userID, nil
	}
}

func (a *TokenAuthority) evict(ctx context.Context, token string, userID uint64) {
	if err := a.cache.EvictToken(ctx, token, userID); err != nil {
		a.logger.Error("token cache evict failed", "user_id", userID, "err", err)
	}
}

// RevokeAll invalidates every token ever issued to userID. Idempotent.
//
// The store is updated before the cache is purged. A purge failure is
// returned: a token still cached would otherwise keep validating.
func (a *TokenAuthority) RevokeAll(ctx context.Context, userID uint64) error {
	if err := a.store.InvalidateAll(ctx, userID); err != nil {
		return err
	}
	if a.cache != nil {
		if err := a.cache.PurgeUserTokens(ctx, userID); err != nil {
			return fmt.Errorf("purge cached tokens of user %d: %w", userID, err)
		}
	}
	return nil
}

// Package movienight implements the pairing, rating and recommendation API.
package movienight

import (
	"context"

	"github.com/oggyb/movienight/internal/app"
	"github.com/oggyb/movienight/internal/auth"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/metrics"
	"github.com/oggyb/movienight/internal/repository"
	"github.com/oggyb/movienight/internal/validation"
)

// Service contains the business logic on top of the repository and cache
// layers. Every method is one public operation; transports only decode
// requests, extract the session token and map errors.
type Service struct {
	appCtx      *app.AppContext
	credentials *auth.CredentialStore
	tokens      *auth.TokenAuthority

	users   *repository.UserRepository
	pairs   *repository.PairRepository
	ratings *repository.RatingRepository
	movies  *repository.MovieRepository
}

// NewService creates the service with dependencies from AppContext.
// Dependencies include:
//   - DB connection (via the repositories)
//   - RedisCache for the token cache
//   - Movies, the trending movie provider
func NewService(appCtx *app.AppContext) *Service {
	users := repository.NewUserRepository(appCtx.DB)

	var tokenCache auth.TokenCache
	if appCtx.RedisCache != nil {
		tokenCache = appCtx.RedisCache
	}

	return &Service{
		appCtx:      appCtx,
		credentials: auth.NewCredentialStore(users, appCtx.BcryptCost),
		tokens:      auth.NewTokenAuthority(repository.NewTokenRepository(appCtx.DB), tokenCache, appCtx.Logger),
		users:       users,
		pairs:       repository.NewPairRepository(appCtx.DB),
		ratings:     repository.NewRatingRepository(appCtx.DB),
		movies:      repository.NewMovieRepository(appCtx.DB),
	}
}

// authenticate resolves the caller of an authenticated operation.
func (s *Service) authenticate(ctx context.Context, token string) (uint64, error) {
	userID, err := s.tokens.Validate(ctx, token)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindUnauthenticated {
			metrics.AuthFailures.WithLabelValues("token").Inc()
			return 0, err
		}
		return 0, s.fail(err, "Could not authenticate", "token validation failed")
	}
	return userID, nil
}

// fail logs a failed dependency call and converts it for the caller.
// Cancellation and deadlines keep their own kind (see errors.Map) and are
// logged at Warn; any other cause becomes an Upstream error carrying public.
func (s *Service) fail(err error, public, logMsg string, attrs ...any) error {
	attrs = append(attrs, "err", err)
	mapped := svcErr.Map(err)
	switch svcErr.KindOf(mapped) {
	case svcErr.KindCanceled, svcErr.KindTimeout:
		s.appCtx.Logger.Warn(logMsg, attrs...)
		return mapped
	}
	s.appCtx.Logger.Error(logMsg, attrs...)
	return svcErr.Upstream(public, err)
}

// validate runs struct validation and reports any failure as msg.
func (s *Service) validate(req any, msg string) error {
	if err := validation.ValidateStruct(req); err != nil {
		s.appCtx.Logger.Debug("request rejected", "reason", err.Error())
		return svcErr.InvalidArgument(msg)
	}
	return nil
}

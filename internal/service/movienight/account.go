package movienight

import (
	"context"

	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/metrics"
)

// Login checks credentials and opens a new session.
//
// Behavior:
//   - Missing username or password fails with InvalidInput.
//   - Unknown user and wrong password both fail with Unauthenticated.
//   - Issues a fresh token; earlier tokens of the user stay valid until logout.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*SessionResponse, error) {
	if err := s.validate(req, "Missing data"); err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("Login called", "username", req.Username)

	user, err := s.credentials.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if svcErr.KindOf(err) == svcErr.KindUnauthenticated {
			metrics.AuthFailures.WithLabelValues("login").Inc()
			return nil, err
		}
		return nil, s.fail(err, "Unable to authenticate", "Authenticate failed", "username", req.Username)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, s.fail(err, "Failed creating token", "Issue token failed", "user_id", user.ID)
	}

	return &SessionResponse{ID: user.ID, FullName: user.FullName, Token: token}, nil
}

// Logout invalidates every token of the caller, not just the presented one.
//
// Behavior:
//   - A missing token fails with Unauthenticated.
//   - A token that no longer validates is a no-op returning ok, so logging
//     out twice succeeds. Revoked and never-issued tokens get the same answer.
func (s *Service) Logout(ctx context.Context, token string) (*StatusResponse, error) {
	if token == "" {
		return nil, svcErr.Unauthenticated("Missing token")
	}

	userID, err := s.tokens.Validate(ctx, token)
	if svcErr.KindOf(err) == svcErr.KindUnauthenticated {
		return statusOK, nil
	}
	if err != nil {
		return nil, s.fail(err, "Logout failed", "token validation failed")
	}

	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return nil, s.fail(err, "Logout failed", "RevokeAll failed", "user_id", userID)
	}
	s.appCtx.Logger.Debug("Logout done", "user_id", userID)
	return statusOK, nil
}

// CreateUser registers a user and logs them in.
//
// Behavior:
//   - Any empty field fails with InvalidInput.
//   - A taken username fails with Conflict; the constraint detail is passed through.
//   - On success the response is the same as Login.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*SessionResponse, error) {
	if err := s.validate(req, "Missing data"); err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("CreateUser called", "username", req.Username)

	if _, err := s.credentials.Register(ctx, req.Username, req.Password, req.FullName); err != nil {
		switch svcErr.KindOf(err) {
		case svcErr.KindConflict, svcErr.KindInvalidInput:
			return nil, err
		}
		return nil, s.fail(err, "Failed creating user", "Register failed", "username", req.Username)
	}

	return s.Login(ctx, &LoginRequest{Username: req.Username, Password: req.Password})
}

package movienight

import (
	"context"
	"errors"

	"github.com/oggyb/movienight/internal/db"
	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/metrics"
	"github.com/oggyb/movienight/internal/repository"
)

// CreatePair pairs the caller with partnerUsername.
//
// Checks run in a fixed order so a given bad input always gets the same error:
//  1. empty username            -> InvalidInput
//  2. unknown username          -> InvalidInput
//  3. the caller themself       -> InvalidInput
//  4. caller already paired     -> Conflict
//  5. partner already paired    -> Conflict
//
// The insert is atomic at the store (see repository.PairRepository.Create);
// losing a race against a concurrent pairing also ends in Conflict.
func (s *Service) CreatePair(ctx context.Context, token string, req *CreatePairRequest) (*PartnerResponse, error) {
	userID, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.validate(req, "Missing partner username"); err != nil {
		return nil, err
	}
	s.appCtx.Logger.Debug("CreatePair called", "user_id", userID, "partner", req.PartnerUsername)

	partner, err := s.users.GetByUsername(ctx, req.PartnerUsername)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, svcErr.InvalidArgument("Not a valid username")
	}
	if err != nil {
		return nil, s.pairFailure("GetByUsername", err)
	}

	if partner.ID == userID {
		return nil, svcErr.InvalidArgument("You cannot pair with yourself")
	}

	if _, paired, err := s.pairs.PartnerOf(ctx, userID); err != nil {
		return nil, s.pairFailure("PartnerOf", err)
	} else if paired {
		return nil, svcErr.AlreadyExists("You already have a partner")
	}

	if paired, err := s.pairs.IsPaired(ctx, partner.ID); err != nil {
		return nil, s.pairFailure("IsPaired", err)
	} else if paired {
		return nil, svcErr.AlreadyExists("This user already has a partner")
	}

	if _, err := s.pairs.Create(ctx, userID, partner.ID); err != nil {
		if errors.Is(err, repository.ErrAlreadyPaired) {
			return nil, s.lostPairRace(ctx, userID)
		}
		return nil, s.pairFailure("Create", err)
	}
	metrics.PairsCreated.Inc()

	return partnerView(partner), nil
}

// GetPair returns the caller's partner, or an empty response when unpaired.
func (s *Service) GetPair(ctx context.Context, token string) (*PartnerResponse, error) {
	userID, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	partnerID, paired, err := s.pairs.PartnerOf(ctx, userID)
	if err != nil {
		return nil, s.pairFailure("PartnerOf", err)
	}
	if !paired {
		return &PartnerResponse{}, nil
	}

	partner, err := s.users.GetByID(ctx, partnerID)
	if err != nil {
		return nil, s.pairFailure("GetByID", err)
	}
	return partnerView(partner), nil
}

// lostPairRace picks the conflict message after the store refused the insert.
func (s *Service) lostPairRace(ctx context.Context, userID uint64) error {
	if _, paired, err := s.pairs.PartnerOf(ctx, userID); err == nil && paired {
		return svcErr.AlreadyExists("You already have a partner")
	}
	return svcErr.AlreadyExists("This user already has a partner")
}

func (s *Service) pairFailure(step string, err error) error {
	return s.fail(err, "Error pairing users", step+" failed")
}

func partnerView(u *db.User) *PartnerResponse {
	return &PartnerResponse{ID: u.ID, Username: u.Username, FullName: u.FullName}
}

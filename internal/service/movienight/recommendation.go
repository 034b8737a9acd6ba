package movienight

import "context"

// GetRecommendation lists the movies the caller and their partner both liked,
// best average first. An unpaired caller is not an error: the partner filter
// matches nobody and only movies the caller liked twice can qualify.
func (s *Service) GetRecommendation(ctx context.Context, token string) ([]RecommendationResponse, error) {
	userID, err := s.authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	partnerID, paired, err := s.pairs.PartnerOf(ctx, userID)
	if err != nil {
		return nil, s.fail(err, "Error getting recommendations", "PartnerOf failed", "user_id", userID)
	}
	if !paired {
		partnerID = 0
	}

	rows, err := s.movies.Recommend(ctx, userID, partnerID)
	if err != nil {
		return nil, s.fail(err, "Error getting recommendations", "Recommend failed", "user_id", userID, "partner_id", partnerID)
	}

	out := make([]RecommendationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, RecommendationResponse{
			MovieResponse: MovieResponse{
				ID:          r.ID,
				APIID:       r.APIID,
				Title:       r.Title,
				Overview:    r.Overview,
				ReleaseDate: r.ReleaseDate,
				TrailerURL:  r.TrailerURL,
			},
			Rating: r.AvgRating,
		})
	}

	s.appCtx.Logger.Debug("GetRecommendation result", "user_id", userID, "paired", paired, "count", len(out))
	return out, nil
}

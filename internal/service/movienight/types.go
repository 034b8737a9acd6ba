package movienight

// Request and response shapes of the public API. JSON names are part of the
// wire contract shared by the HTTP and gRPC transports.

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"fullName" validate:"required"`
}

// SessionResponse is returned by login and createUser.
type SessionResponse struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type CreatePairRequest struct {
	PartnerUsername string `json:"partnerUsername" validate:"required"`
}

// PartnerResponse is a partner's public profile. It encodes as {} when the
// caller has no partner.
type PartnerResponse struct {
	ID       uint64 `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

type MovieResponse struct {
	ID          uint64 `json:"id"`
	APIID       int64  `json:"apiId"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	ReleaseDate string `json:"releaseDate"`
	TrailerURL  string `json:"trailerUrl"`
}

// RateMovieRequest uses a pointer for Rating so a missing rating is told
// apart from an explicit 0; both are rejected.
type RateMovieRequest struct {
	MovieID uint64 `json:"movieId" validate:"required"`
	Rating  *int   `json:"rating" validate:"required"`
}

type RecommendationResponse struct {
	MovieResponse
	Rating float64 `json:"rating"`
}

// Empty is the request of operations that only need the session token.
type Empty struct{}

var statusOK = &StatusResponse{Status: "ok"}

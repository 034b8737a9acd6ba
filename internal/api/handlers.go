package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oggyb/movienight/internal/service/movienight"
)

// Handler adapts HTTP requests to MovieNight calls. It decodes, extracts the
// token and maps errors; everything else lives in the service.
type Handler struct {
	svc           MovieNight
	health        HealthFunc
	providerState func() string
	logger        *slog.Logger
}

type healthResponse struct {
	Status string `json:"status"`
	Movies string `json:"movies,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req movienight.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	resp, err := h.svc.Login(r.Context(), &req)
	h.respond(w, resp, err)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Logout(r.Context(), tokenFrom(r))
	h.respond(w, resp, err)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req movienight.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	resp, err := h.svc.CreateUser(r.Context(), &req)
	h.respond(w, resp, err)
}

func (h *Handler) CreatePair(w http.ResponseWriter, r *http.Request) {
	var req movienight.CreatePairRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	resp, err := h.svc.CreatePair(r.Context(), tokenFrom(r), &req)
	h.respond(w, resp, err)
}

func (h *Handler) GetPair(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetPair(r.Context(), tokenFrom(r))
	h.respond(w, resp, err)
}

func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetMovie(r.Context(), tokenFrom(r))
	h.respond(w, resp, err)
}

func (h *Handler) RateMovie(w http.ResponseWriter, r *http.Request) {
	var req movienight.RateMovieRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}
	resp, err := h.svc.RateMovie(r.Context(), tokenFrom(r), &req)
	h.respond(w, resp, err)
}

func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetRecommendation(r.Context(), tokenFrom(r))
	h.respond(w, resp, err)
}

// Health pings the backing stores with a short deadline. An open movie
// provider breaker is reported but does not fail the check: only GET /movie
// depends on it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := &healthResponse{Status: "ok"}
	if h.providerState != nil {
		resp.Movies = h.providerState()
	}

	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			h.logger.Warn("health check failed", "err", err)
			resp.Status = "unavailable"
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) respond(w http.ResponseWriter, resp any, err error) {
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	svcErr "github.com/oggyb/movienight/internal/errors"
	"github.com/oggyb/movienight/internal/logger"
	"github.com/oggyb/movienight/internal/service/movienight"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Error("Failed to write JSON response", "err", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &errorResponse{Error: message})
}

// respondServiceError maps a service error to its status and message.
// Errors that did not come from the service layer never leak their text.
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, svcErr.HTTPStatus(err), svcErr.Message(err))
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// zero-valued so the operation reports its own missing-field error.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return svcErr.InvalidArgument("Malformed request body")
	}
	return nil
}

// tokenFrom reads the session token from the Authorization header, raw or
// as "Bearer <token>".
func tokenFrom(r *http.Request) string {
	return movienight.StripBearer(strings.TrimSpace(r.Header.Get("Authorization")))
}

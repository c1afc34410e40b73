package api

import (
	"log/slog"
	"net/http"

	"github.com/BogdanBedrinec/cards/internal/api/middleware"
	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrInvalidID)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// requireOwner returns the authenticated owner, writing a 401 when the
// context carries none.
func requireOwner(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	ownerID, ok := middleware.GetOwnerID(r)
	if !ok {
		log.Warn("owner ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner not found or invalid")
		return uuid.Nil, false
	}
	return ownerID, true
}

// handleOwnerAndPathUUID resolves both the owner and a UUID path parameter,
// writing an error response if either is missing.
func handleOwnerAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, uuid.Nil, false
	}

	return ownerID, pathID, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing
// the error response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		status := MapErrorToStatusCode(err)
		message := GetSafeErrorMessage(err)
		if status == http.StatusInternalServerError {
			status, message = http.StatusBadRequest, "Invalid request format"
		}
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleValidationError(w, r, err)
		return false
	}
	return true
}

// parseIDs converts client ids to UUIDs. Malformed and nil ids cannot name
// a card and are dropped, like ids of other owners.
func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil || id == uuid.Nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

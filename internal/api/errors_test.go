package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("word", "is required", nil), http.StatusBadRequest},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest},
		{"empty body", shared.ErrEmptyBody, http.StatusBadRequest},
		{"body too large", fmt.Errorf("%w: limit", shared.ErrBodyTooLarge), http.StatusRequestEntityTooLarge},
		{"missing owner", service.ErrMissingOwner, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"card not found", store.ErrCardNotFound, http.StatusNotFound},
		{"wrapped duplicate", fmt.Errorf("insert: %w", store.ErrCardExists), http.StatusConflict},
		{"rejected", domain.NewRejectedError("the default deck cannot be renamed"), http.StatusUnprocessableEntity},
		{"internal", service.NewServiceError("list", "store failed", errors.New("disk I/O error")), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err), tc.name)
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"field validation", domain.NewValidationError("ids", "must not be empty", nil), "ids must not be empty"},
		{"rejected", domain.NewRejectedError("the default deck cannot be removed"), "The default deck cannot be removed"},
		{"not found", store.ErrCardNotFound, "Card not found"},
		{"duplicate", store.ErrCardExists, "A card with this word, translation and deck already exists"},
		{"expired", auth.ErrExpiredToken, "Token expired"},
		{"internal", errors.New("pq: password authentication failed for user cards"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, GetSafeErrorMessage(tc.err), tc.name)
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.ValidateRequest(&RenameDeckRequest{From: "Tiere"})
	assert.Equal(t, "Invalid to: required field", SanitizeValidationError(err))
	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("other")))
}

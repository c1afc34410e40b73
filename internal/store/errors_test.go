package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "wrapped ErrNotFound", err: fmt.Errorf("lookup: %w", ErrNotFound), expected: true},
		{name: "ErrCardNotFound", err: ErrCardNotFound, expected: true},
		{name: "wrapped ErrCardNotFound", err: fmt.Errorf("get card: %w", ErrCardNotFound), expected: true},
		{name: "ErrCardExists", err: ErrCardExists, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrCardExists", err: ErrCardExists, expected: true},
		{name: "wrapped ErrCardExists", err: fmt.Errorf("create card: %w", ErrCardExists), expected: true},
		{name: "ErrCardNotFound", err: ErrCardNotFound, expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsDuplicateError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("card", "create", "database error", originalErr)

	assert.Equal(t,
		"create operation on card failed: database error: database connection failed",
		storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)

	bare := NewStoreError("card", "list", "invalid sort", nil)
	assert.Equal(t, "list operation on card failed: invalid sort", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

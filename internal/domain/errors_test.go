// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	tests := []struct {
		name        string
		err         *DomainError
		wantMessage string
		wantType    ErrorType
	}{
		{
			name:        "validation error without cause",
			err:         NewValidationError("missing bot id"),
			wantMessage: "missing bot id",
			wantType:    ErrorTypeValidation,
		},
		{
			name:        "conflict error with cause",
			err:         NewConflictError("tenant already has a live session", errors.New("acme")),
			wantMessage: "tenant already has a live session: acme",
			wantType:    ErrorTypeConflict,
		},
		{
			name:        "not found error",
			err:         NewNotFoundError("session not found"),
			wantMessage: "session not found",
			wantType:    ErrorTypeNotFound,
		},
		{
			name:        "internal error",
			err:         NewInternalError("registry corrupted"),
			wantMessage: "registry corrupted",
			wantType:    ErrorTypeInternal,
		},
		{
			name:        "unavailable error",
			err:         NewUnavailableError("provider unreachable"),
			wantMessage: "provider unreachable",
			wantType:    ErrorTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.err.Error())
			assert.Equal(t, tt.wantType, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorTypeFallback(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, GetErrorType(errors.New("plain error")))
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUnavailableError("provider call failed", cause)

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("starting session: %w", err)
	assert.Equal(t, ErrorTypeUnavailable, GetErrorType(wrapped))
}

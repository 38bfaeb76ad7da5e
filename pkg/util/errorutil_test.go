package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
		want int
	}{
		{"domain error passes through", NewForbidden("nope"), "FORBIDDEN", http.StatusForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewNotFound("application", nil)), "NOT_FOUND", http.StatusNotFound},
		{"no rows", pgx.ErrNoRows, "NOT_FOUND", http.StatusNotFound},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.want, got.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
	assert.Equal(t, http.StatusOK, StatusOf(nil))
}

func TestInternalErrorHidesCause(t *testing.T) {
	err := ToDomainError(NewInternalError(errors.New("dial tcp: refused")))
	assert.Equal(t, "internal server error", err.Message)
	assert.ErrorContains(t, err, "refused")
}

func TestNewInvalidChoice(t *testing.T) {
	err := ToDomainError(NewInvalidChoice("status", "cancelled", []string{"pending", "approved"}))
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.Equal(t, "invalid status. Valid values are: pending, approved", err.Message)
	assert.Equal(t, "cancelled", err.Details["received"])
}

func TestFromStatus(t *testing.T) {
	err := FromStatus(http.StatusNotFound, "Cannot GET /nope")
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, "Cannot GET /nope", err.Message)

	err = FromStatus(http.StatusRequestEntityTooLarge, "")
	assert.Equal(t, "REQUEST_ENTITY_TOO_LARGE", err.Code)
	assert.Equal(t, "Request Entity Too Large", err.Message)
}

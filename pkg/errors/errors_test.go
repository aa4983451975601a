package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("approve: %w", ErrAlreadyProcessed)
	got := FromError(wrapped)
	assert.Equal(t, "ALREADY_PROCESSED", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "internal server error: boom", got.Error())
}

func TestCloneAndDetailsDoNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "title is required")
	detailed := WithDetails(clone, map[string]string{"title": "required"})

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, ErrValidation.Details)
	assert.Equal(t, "title is required", detailed.Message)
	assert.Equal(t, "required", detailed.Details["title"])
}

func TestIsMatchesClonesByCode(t *testing.T) {
	clone := Clone(ErrAlreadyProcessed, "certificate c1 was decided already")
	wrapped := fmt.Errorf("approve: %w", clone)

	assert.True(t, errors.Is(wrapped, ErrAlreadyProcessed))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.False(t, errors.Is(errors.New("plain"), ErrAlreadyProcessed))
}

func TestFromErrorFillsMissingStatus(t *testing.T) {
	got := FromError(&Error{Code: "CUSTOM", Message: "custom"})
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.Equal(t, "CUSTOM", got.Code)
}

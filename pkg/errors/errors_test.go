package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(stdErrors.New("connection reset"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
}

func TestCloneKeepsIdentity(t *testing.T) {
	clone := Clone(ErrNotFound, "registration not found")
	assert.Equal(t, "registration not found", clone.Message)
	assert.True(t, stdErrors.Is(clone, ErrNotFound))
	assert.False(t, stdErrors.Is(clone, ErrValidation))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestInternalHidesCauseFromMessage(t *testing.T) {
	cause := stdErrors.New("pq: relation does not exist")
	appErr := Internal(cause, "failed to load events")
	assert.Equal(t, "failed to load events", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsKind(t *testing.T) {
	err := Clone(ErrNotFound, "grievance not found")
	assert.Equal(t, "grievance not found", err.Message)
	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrNotFound))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Error(), "boom")

	assert.Nil(t, FromError(nil))
	assert.Same(t, ErrForbidden, FromError(ErrForbidden))
}

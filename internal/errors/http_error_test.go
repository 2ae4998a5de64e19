package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorCollectsFields(t *testing.T) {
	v := NewValidationError()
	assert.True(t, v.Empty())
	assert.NoError(t, v.OrNil())

	v.Add("title", "This field is required.")
	v.Add("title", "Ensure this field has no more than 255 characters.")
	v.Add("location", "This field is required.")

	require.Error(t, v.OrNil())
	assert.Len(t, v.Fields["title"], 2)
	assert.Equal(t, "validation failed: location: This field is required.; title: This field is required. Ensure this field has no more than 255 characters.", v.Error())
}

func TestHTTPErrorUnwrapsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("loading listing: %w", ErrNotFound)

	var httpErr *HTTPError
	require.True(t, stderrors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Code)
	assert.Equal(t, "Not found.", httpErr.Error())
	assert.Equal(t, http.StatusConflict, ErrConflict("paid").Code)
}

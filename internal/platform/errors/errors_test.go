package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
)

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.Code
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain error is internal", err: stderrors.New("boom"), want: errors.ErrCodeInternal},
		{name: "invalid input", err: errors.InvalidInput("price", "too high"), want: errors.ErrCodeInvalidInput},
		{name: "not found", err: errors.NotFound("item", "7"), want: errors.ErrCodeNotFound},
		{
			name: "wrapped by fmt keeps code",
			err:  fmt.Errorf("outer: %w", errors.NotFound("approval", "1")),
			want: errors.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.CodeOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrCodeInternal, "ignored"))

	cause := stderrors.New("connection reset")
	err := errors.Wrap(cause, errors.ErrCodeInternal, "failed to save item")

	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "failed to save item: connection reset", err.Error())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "name: name is required", errors.InvalidInput("name", "name is required").Error())
	assert.Equal(t, "item 42 not found", errors.NotFound("item", "42").Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, errors.HTTPStatus(errors.InvalidInput("x", "y")))
	assert.Equal(t, http.StatusNotFound, errors.HTTPStatus(errors.NotFound("item", "1")))
	assert.Equal(t, http.StatusConflict, errors.HTTPStatus(errors.New(errors.ErrCodeConflict, "busy")))
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(stderrors.New("boom")))
}

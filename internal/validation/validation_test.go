package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/validation"
)

type createRequest struct {
	Title  string   `json:"title" validate:"required"`
	Author string   `json:"author" validate:"required"`
	Tags   []string `json:"tags"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := createRequest{
		Title:  "Dune",
		Author: "Frank Herbert",
	}

	assert.NoError(t, v.Validate(req))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name       string
		req        createRequest
		wantErrMsg string
	}{
		{
			name:       "missing title",
			req:        createRequest{Author: "Frank Herbert"},
			wantErrMsg: "title",
		},
		{
			name:       "missing author",
			req:        createRequest{Title: "Dune"},
			wantErrMsg: "author",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *domainerrors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details, tt.wantErrMsg)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(createRequest{Author: "Frank Herbert"})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	assert.True(t, errors.As(err, &domainErr))

	// Should use JSON tag name "title", not struct field name "Title".
	details, ok := domainErr.Details.(map[string]string)
	assert.True(t, ok)
	assert.Contains(t, details, "title")
	assert.NotContains(t, details, "Title")
}

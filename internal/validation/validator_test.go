package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/permalinkapp/permalink-server/internal/errors"
	"github.com/permalinkapp/permalink-server/internal/validation"
)

type TestRequest struct {
	ItemID string `json:"item_id" validate:"required,max=64"`
	Kind   string `json:"kind" validate:"omitempty,oneof=movie show person"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	req := TestRequest{
		ItemID: "item-1",
		Kind:   "movie",
	}

	err := v.Validate(req)
	assert.NoError(t, err)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name        string
		req         TestRequest
		wantErrCode int
		wantField   string
	}{
		{
			name:        "missing required field",
			req:         TestRequest{ItemID: ""},
			wantErrCode: http.StatusBadRequest,
			wantField:   "item_id",
		},
		{
			name:        "item ID too long",
			req:         TestRequest{ItemID: string(make([]byte, 65))},
			wantErrCode: http.StatusBadRequest,
			wantField:   "item_id",
		},
		{
			name:        "kind not in allowed set",
			req:         TestRequest{ItemID: "item-1", Kind: "playlist"},
			wantErrCode: http.StatusBadRequest,
			wantField:   "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			assert.Error(t, err)

			var domainErr *errors.Error
			if assert.True(t, errors.As(err, &domainErr)) {
				assert.Equal(t, tt.wantErrCode, domainErr.HTTPStatus())

				details, ok := domainErr.Details.(map[string]string)
				if assert.True(t, ok) {
					assert.Contains(t, details, tt.wantField)
				}
			}
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(TestRequest{ItemID: ""})
	assert.Error(t, err)

	var domainErr *errors.Error
	assert.True(t, errors.As(err, &domainErr))

	details, ok := domainErr.Details.(map[string]string)
	assert.True(t, ok)
	assert.Contains(t, details, "item_id")
	assert.NotContains(t, details, "ItemID")
}

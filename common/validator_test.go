// file: common/validator_test.go

package common

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type samplePayload struct {
	Email  string  `json:"email" validate:"required,email"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

func TestValidateAndDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"user@example.com","amount":10}`))
		var payload samplePayload

		appErr := ValidateAndDecode(req, &payload)

		assert.Nil(t, appErr)
		assert.Equal(t, "user@example.com", payload.Email)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
		var payload samplePayload

		appErr := ValidateAndDecode(req, &payload)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
	})

	t.Run("failed validation rules", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","amount":0}`))
		var payload samplePayload

		appErr := ValidateAndDecode(req, &payload)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Contains(t, appErr.Message, "Email")
	})

	t.Run("non-struct payload does not panic", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`"just a string"`))
		var payload string

		var appErr *AppError
		assert.NotPanics(t, func() {
			appErr = ValidateAndDecode(req, &payload)
		})
		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
	})
}

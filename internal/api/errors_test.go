package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("PACKAGE_NOT_FOUND", "package not found"), http.StatusNotFound},
		{"invalid input", InvalidInput("INVALID_TRAINER", "invalid trainer"), http.StatusBadRequest},
		{"conflict", Conflict("SUBSCRIPTION_OVERLAP", "overlap"), http.StatusConflict},
		{"forbidden", Forbidden("FORBIDDEN", "no"), http.StatusForbidden},
		{"unauthorized", Unauthorized("UNAUTHENTICATED", "who"), http.StatusUnauthorized},
		{"payment failed", PaymentFailed("PAYMENT_FAILED", "declined"), http.StatusPaymentRequired},
		{"wrapped", fmt.Errorf("ledger: %w", NotFound("MEMBER_NOT_FOUND", "member not found")), http.StatusNotFound},
		{"plain", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("domain error keeps code and message", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, NotFound("PACKAGE_NOT_FOUND", "package not found"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "PACKAGE_NOT_FOUND", body.Code)
		assert.Equal(t, "package not found", body.Error)
	})

	t.Run("unknown error is a store failure", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, errors.New("pq: deadlock detected"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, CodeStoreFailure, body.Code)
		assert.NotContains(t, body.Error, "deadlock")
	})
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"unauthorized", ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", ErrRoomNotFound, http.StatusNotFound, "ROOM_NOT_FOUND"},
		{"conflict", ErrRoomFull, http.StatusConflict, "ROOM_FULL"},
		{"wrapped domain error", fmt.Errorf("assign: %w", ErrAssignedElsewhere), http.StatusConflict, "ASSIGNED_TO_ANOTHER_ROOM"},
		{"internal kind hides message", Internal("TOKEN_FAILED", "jwt exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	custom := ErrInsufficientAmount.Withf("the amount is insufficient. Required amount is %s", "5000")

	assert.True(t, errors.Is(custom, ErrInsufficientAmount))
	assert.False(t, errors.Is(custom, ErrInvalidAmount))
	assert.Equal(t, "the amount is insufficient. Required amount is 5000", custom.Error())
	assert.Equal(t, "insufficient amount", ErrInsufficientAmount.Error())
}

func TestError_DetailsReachResponse(t *testing.T) {
	err := ErrValidation.WithDetails("cnic is required", "amount is required")

	resp := MapErrorToHTTP(err).ToErrorResponse()

	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
	assert.Equal(t, []string{"cnic is required", "amount is required"}, resp.Details)
	assert.Empty(t, ErrValidation.Details)
}

package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewServerRejection(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		detail   string
		wantType ErrorType
		wantMsg  string
	}{
		{"detail kept", http.StatusBadRequest, "Graph not found", ErrorTypeServerRejection, "Graph not found"},
		{"fallback message", http.StatusInternalServerError, "", ErrorTypeServerRejection, "HTTP error! status: 500"},
		{"unauthorized", http.StatusUnauthorized, "Not authenticated", ErrorTypeUnauthorized, "Not authenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewServerRejection(tt.status, tt.detail)
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.status, err.Status)
			assert.True(t, IsServerRejection(err))
		})
	}
}

func TestGetAppError_ThroughWrapping(t *testing.T) {
	base := NewNetworkError("request failed", fmt.Errorf("dial tcp: refused"))
	wrapped := fmt.Errorf("loading graph: %w", base)

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsNetwork(wrapped))
	assert.False(t, IsRender(wrapped))
	assert.Same(t, base, GetAppError(wrapped))
	assert.Contains(t, base.Error(), "dial tcp")
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	appErr := NewValidationError("name is required")
	err := Wrap(appErr, "create graph")
	assert.True(t, IsValidation(err))
	assert.Equal(t, "create graph: name is required", GetAppError(err).Message)

	plain := Wrapf(fmt.Errorf("boom"), "step %d", 2)
	assert.True(t, IsType(plain, ErrorTypeInternal))
	assert.Equal(t, "step 2", GetAppError(plain).Message)
}

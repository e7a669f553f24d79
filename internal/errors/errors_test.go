package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewValidationError(ErrCodeInvalidFormat, "unknown output format", nil)
		assert.Equal(t, "INVALID_FORMAT: unknown output format", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := NewNetworkError(ErrCodeNetworkTimeout, "scorer unreachable", cause)
		assert.Equal(t, "NETWORK_TIMEOUT: scorer unreachable (caused by: connection refused)", err.Error())
	})
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("no such file")
	err := NewIOError(ErrCodeFileNotFound, "resume file missing", cause)

	assert.ErrorIs(t, err, cause)
	assert.Nil(t, errors.Unwrap(NewIOError(ErrCodeFileNotFound, "no cause", nil)))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewAIError(ErrCodeAIServiceFailed, "tailoring failed", nil).
		WithContext("model", "gemini-2.0-flash").
		WithContext("attempt", 3)

	assert.Equal(t, "gemini-2.0-flash", err.Context["model"])
	assert.Equal(t, 3, err.Context["attempt"])
}

func TestTypedConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		typ  ErrorType
	}{
		{"validation", NewValidationError(ErrCodeInvalidRequest, "m", nil), ErrorTypeValidation},
		{"io", NewIOError(ErrCodeFileNotReadable, "m", nil), ErrorTypeIO},
		{"ai", NewAIError(ErrCodeEmptyResume, "m", nil), ErrorTypeAI},
		{"network", NewNetworkError(ErrCodeScorerFailed, "m", nil), ErrorTypeNetwork},
		{"config", NewConfigError(ErrCodeInvalidConfig, "m", nil), ErrorTypeConfig},
		{"internal", NewInternalError(ErrCodeMissingAPIKey, "m", nil), ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.err.Type)
		})
	}
}

func TestNewLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := New("verbose")
	assert.ErrorContains(t, err, "invalid log level")
}

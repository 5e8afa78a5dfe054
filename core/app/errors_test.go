package app_test

import (
	"errors"
	"fmt"
	"testing"

	"sofie/core/app"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"Bind", "Failed to bind to port 8080", "Failed to start server: Failed to bind to port 8080"},
		{"Refused", "Connection refused", "Failed to start server: Connection refused"},
		{"Empty", "", "Failed to start server: "},
		{"Unicode", "порт занят", "Failed to start server: порт занят"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &app.Error{Kind: app.ServerStart, Message: tt.message}
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestError_Wrapping(t *testing.T) {
	cause := errors.New("port already in use")
	var err error = &app.Error{Kind: app.ServerStart, Message: cause.Error(), Err: cause}

	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("main: %w", err)
	var appErr *app.Error
	require.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, app.ServerStart, appErr.Kind)
	assert.Equal(t, "port already in use", appErr.Message)
}

func TestError_NoCause(t *testing.T) {
	err := &app.Error{Kind: app.ServerStart, Message: "Test error"}
	assert.Nil(t, errors.Unwrap(err))
	assert.Contains(t, fmt.Sprintf("%+v", *err), "ServerStart")
}

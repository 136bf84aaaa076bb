package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want []string
	}{
		{
			name: "message only",
			err:  Validation(ErrCodePasswordMismatch, "Las contraseñas no coinciden"),
			want: []string{"[AUTH-004]", "Las contraseñas no coinciden"},
		},
		{
			name: "with cause",
			err:  Persistence(ErrCodeStoreWrite, "failed to write session", fmt.Errorf("disk full")),
			want: []string{"[STORE-003]", "failed to write session", "disk full"},
		},
		{
			name: "with suggestions",
			err:  Network(fmt.Errorf("dial tcp: refused")),
			want: []string{"[NET-001]", ConnectionMessage, "Suggestions:", "--api-url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, part := range tt.want {
				assert.Contains(t, got, part)
			}
		})
	}
}

func TestAPIFallback(t *testing.T) {
	err := API(401, "invalid token", "No se pudo renovar el token")
	assert.Equal(t, "invalid token", err.Message)
	assert.Equal(t, 401, err.Status)
	assert.Equal(t, KindAPI, err.Kind)

	err = API(500, "   ", "No se pudo renovar el token")
	assert.Equal(t, "No se pudo renovar el token", err.Message)
}

func TestKindHelpers(t *testing.T) {
	base := API(403, "forbidden", "")
	wrapped := fmt.Errorf("login: %w", base)

	assert.Equal(t, KindAPI, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindAPI))
	assert.False(t, IsKind(wrapped, KindNetwork))
	assert.Equal(t, 403, StatusOf(wrapped))
	assert.Equal(t, ErrCodeAPIRejected, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))

	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain")))
	assert.False(t, IsKind(nil, KindAPI))
	assert.Equal(t, 0, StatusOf(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "plain", UserMessage(stderrors.New("plain")))

	netErr := Network(stderrors.New("dial tcp 127.0.0.1:8000: connection refused"))
	msg := UserMessage(fmt.Errorf("refresh: %w", netErr))
	assert.Equal(t, ConnectionMessage, msg)
	assert.False(t, strings.Contains(msg, "dial tcp"))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(KindPersistence, ErrCodeStoreRead, "read failed", cause)
	require.ErrorIs(t, err, cause)
}

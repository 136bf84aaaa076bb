package exitcode

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/authdemo/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"PersistenceError", PersistenceError, 3},
		{"Declined", Declined, 4},
		{"AuthError", AuthError, 5},
		{"NetworkError", NetworkError, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error returns success",
			err:      nil,
			expected: Success,
		},
		{
			name:     "validation error",
			err:      errors.Validation(errors.ErrCodePasswordMismatch, "Las contraseñas no coinciden"),
			expected: UsageError,
		},
		{
			name:     "unauthorized",
			err:      errors.API(401, "Incorrect username or password", "Credenciales inválidas"),
			expected: AuthError,
		},
		{
			name:     "forbidden wrapped",
			err:      fmt.Errorf("refresh: %w", errors.API(403, "", "No se pudo renovar el token")),
			expected: AuthError,
		},
		{
			name:     "other api rejection",
			err:      errors.API(400, "Username already registered", "Error en el registro"),
			expected: GeneralError,
		},
		{
			name:     "network",
			err:      errors.Network(stderrors.New("connection refused")),
			expected: NetworkError,
		},
		{
			name:     "persistence",
			err:      errors.Persistence(errors.ErrCodeStoreOpen, "cannot open store", nil),
			expected: PersistenceError,
		},
		{
			name:     "declined",
			err:      ErrDeclined,
			expected: Declined,
		},
		{
			name:     "cobra unknown flag",
			err:      stderrors.New("unknown flag: --bogus"),
			expected: UsageError,
		},
		{
			name:     "cobra arg count",
			err:      stderrors.New("accepts 1 arg(s), received 0"),
			expected: UsageError,
		},
		{
			name:     "unclassified",
			err:      stderrors.New("something broke"),
			expected: GeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	for code := Success; code <= NetworkError; code++ {
		if GetExitCodeDescription(code) == "Unknown error" {
			t.Errorf("code %d has no description", code)
		}
	}
	if GetExitCodeDescription(Interrupted) != "Interrupted" {
		t.Error("expected description for Interrupted")
	}
	if GetExitCodeDescription(99) != "Unknown error" {
		t.Error("expected unknown description for 99")
	}
}

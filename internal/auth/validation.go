package auth

import (
	"fmt"
	"unicode/utf8"

	"github.com/felixgeelhaar/authdemo/internal/errors"
)

// Credential length limits. The upper password bound matches bcrypt's input limit.
const (
	MinUsernameLength = 3
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// ValidateRegistration checks registration input locally. Checks run in a
// fixed order and the first failure wins. Lengths are counted in characters.
func ValidateRegistration(username, password, passwordConfirm string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return errors.Validation(errors.ErrCodeUsernameTooShort,
			"El usuario debe tener al menos 3 caracteres")
	}

	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return errors.Validation(errors.ErrCodePasswordTooShort,
			fmt.Sprintf("La contraseña debe tener al menos 8 caracteres (tienes %d)", n))
	}
	if n > MaxPasswordLength {
		return errors.Validation(errors.ErrCodePasswordTooLong,
			"La contraseña no puede exceder 72 caracteres")
	}

	if password != passwordConfirm {
		return errors.Validation(errors.ErrCodePasswordMismatch, "Las contraseñas no coinciden")
	}
	return nil
}

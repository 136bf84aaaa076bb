package cmd

import (
	stderrors "errors"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/exitcode"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

// errNotAuthenticated is returned by commands that need a session.
func errNotAuthenticated() error {
	return errors.Validation(errors.ErrCodeNotAuthenticated, "No autenticado. Inicia sesión primero.").
		WithSuggestion("authdemo login --username <usuario>")
}

// errUserUnavailable mirrors the message shown when the profile cannot be
// loaded.
func errUserUnavailable() error {
	return errors.New(errors.KindAPI, errors.ErrCodeAPIRejected, ux.MsgUserNotFound)
}

// promptError turns an aborted prompt into a decline.
func promptError(err error) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return exitcode.ErrDeclined
	}
	return err
}

// IsDeclined reports whether err only records that the user said no.
func IsDeclined(err error) bool {
	return errors.CodeOf(err) == errors.ErrCodeDeclined
}

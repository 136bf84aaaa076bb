package ux

import (
	stderrors "errors"
	"strings"

	"github.com/felixgeelhaar/authdemo/internal/errors"
)

// FormatError renders err for the terminal: "Error: <message>" followed by
// any suggestions. Causes are left to the logs.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(errors.UserMessage(err))

	var e *errors.Error
	if stderrors.As(err, &e) && len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}
	return b.String()
}

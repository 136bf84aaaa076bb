package auth

import "context"

// LogoutPrompt is the question asked before a logout.
const LogoutPrompt = "¿Estás seguro de que deseas cerrar sesión?"

// Confirmer gates destructive operations behind a yes/no answer.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes without asking.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// NeverConfirm answers no without asking.
var NeverConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })

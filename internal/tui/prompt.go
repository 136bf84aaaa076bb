package tui

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/authdemo/internal/auth"
)

// Credentials collects what register and login need. Prompts only ask for
// fields that are still empty.
type Credentials struct {
	Username        string
	Password        string
	PasswordConfirm string
}

// PromptCredentials asks for any missing credential. withConfirm adds the
// password confirmation used by registration.
func PromptCredentials(ctx context.Context, c *Credentials, withConfirm bool) error {
	var fields []huh.Field
	if c.Username == "" {
		fields = append(fields, huh.NewInput().Title("Usuario").Value(&c.Username))
	}
	if c.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Contraseña").
			EchoMode(huh.EchoModePassword).
			Value(&c.Password))
	}
	if withConfirm && c.PasswordConfirm == "" {
		fields = append(fields, huh.NewInput().
			Title("Confirmar contraseña").
			EchoMode(huh.EchoModePassword).
			Value(&c.PasswordConfirm))
	}
	if len(fields) == 0 {
		return nil
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).RunWithContext(ctx); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(ctx context.Context, message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Affirmative("Sí").
		Negative("No").
		Value(&confirmed)

	if err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// Confirmer asks on the terminal. It answers no when prompting is not
// possible, so a logout never happens without a human saying yes.
type Confirmer struct{}

// Confirm implements auth.Confirmer.
func (Confirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !ShouldPrompt() {
		return false, nil
	}
	return PromptForConfirmation(ctx, prompt, false)
}

var _ auth.Confirmer = Confirmer{}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

// View renders the dashboard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.view {
	case ViewAuth:
		b.WriteString(m.renderAuth())
	case ViewConfirmLogout:
		b.WriteString(auth.LogoutPrompt + " (y/n)")
	case ViewProbe:
		b.WriteString(m.renderForm())
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("enter probar • esc volver"))
	default:
		b.WriteString(m.renderDashboard())
	}

	if m.busy {
		b.WriteString("\n\n")
		b.WriteString(m.styles.Muted.Render("Procesando..."))
	}
	if m.message != "" {
		b.WriteString("\n\n")
		if m.messageOK {
			b.WriteString(m.styles.Success.Render(m.message))
		} else {
			b.WriteString(m.styles.Error.Render(m.message))
		}
	}
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("🔐 authdemo")

	status := ux.StatusLine(m.session, m.now)
	statusStyle := m.styles.Success
	if status == ux.StatusUnauthenticated {
		statusStyle = m.styles.Error
	}

	indicator := ux.MsgChecking
	if m.online != nil {
		indicator = ux.HealthIndicator(*m.online)
	}

	return title + "\n" + statusStyle.Render(status) + "   API: " + indicator
}

func (m Model) renderAuth() string {
	login := m.styles.Tab.Render("Iniciar sesión")
	register := m.styles.Tab.Render("Registro")
	if m.tab == tabRegister {
		register = m.styles.ActiveTab.Render("Registro")
	} else {
		login = m.styles.ActiveTab.Render("Iniciar sesión")
	}

	var b strings.Builder
	b.WriteString(login + " " + register)
	b.WriteString("\n\n")
	b.WriteString(m.renderForm())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys.authHelp()))
	return b.String()
}

func (m Model) renderForm() string {
	if m.form == nil {
		return ""
	}
	return m.form.View()
}

func (m Model) renderDashboard() string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(m.styles.Label.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}

	if u := ux.NewUserView(m.session.User); u != nil {
		row("Usuario:", u.Username)
		row("ID:", fmt.Sprintf("%d", u.ID))
		if u.CreatedAt != "" {
			row("Creado:", u.CreatedAt)
		}
	}
	row("Access token:", log.MaskToken(m.session.AccessToken))
	row("Refresh token:", log.MaskToken(m.session.RefreshToken))
	if m.session.TokenExpiry != nil {
		row("Expira en:", ux.FormatCountdown(*m.session.TokenExpiry, m.now))
	}

	if m.result != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Border.Render(m.result))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(keys.dashboardHelp()))
	return b.String()
}

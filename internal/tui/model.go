package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/probe"
	"github.com/felixgeelhaar/authdemo/internal/session"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

// ViewType represents the current view being displayed
type ViewType int

// View type constants
const (
	// ViewAuth shows the login or registration form
	ViewAuth ViewType = iota
	// ViewDashboard shows the session, token countdown and results
	ViewDashboard
	// ViewConfirmLogout asks before logging out
	ViewConfirmLogout
	// ViewProbe asks for an endpoint path to probe
	ViewProbe
)

type authTab int

const (
	tabLogin authTab = iota
	tabRegister
)

// Deps are the services the dashboard drives.
type Deps struct {
	Service *auth.Service
	Prober  *probe.Prober
	Health  health.Prober
	// Now defaults to time.Now.
	Now func() time.Time
}

// formFields backs the huh forms. It lives on the heap so copies of Model
// share it with the form's value pointers.
type formFields struct {
	username string
	password string
	confirm  string
	path     string
}

// Model is the dashboard state. It mirrors the session through the session
// feed and never mutates the session itself.
type Model struct {
	ctx      context.Context
	deps     Deps
	sessions <-chan session.Session
	healthCh <-chan health.Observation

	session session.Session
	now     time.Time
	online  *bool

	view   ViewType
	tab    authTab
	form   *huh.Form
	fields *formFields

	busy      bool
	message   string
	messageOK bool
	result    string

	width    int
	height   int
	quitting bool

	help   help.Model
	styles Styles
}

// Styles contains lipgloss styles for the dashboard
type Styles struct {
	Title     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Label     lipgloss.Style
	Border    lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10b981")),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ef4444")),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Label: lipgloss.NewStyle().
			Bold(true).
			Width(15),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1),
		Tab: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).
			Foreground(lipgloss.Color("230")).
			Bold(true).
			Padding(0, 1),
	}
}

// NewModel creates the dashboard. sessions and healthCh may be nil, in
// which case the model only sees changes it caused itself.
func NewModel(ctx context.Context, deps Deps, sessions <-chan session.Session, healthCh <-chan health.Observation) Model {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := Model{
		ctx:      ctx,
		deps:     deps,
		sessions: sessions,
		healthCh: healthCh,
		session:  deps.Service.State().Get(),
		now:      deps.Now(),
		fields:   &formFields{},
		help:     help.New(),
		styles:   DefaultStyles(),
	}
	m.syncView()
	return m
}

// Init starts the countdown and the feeds.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), waitForSession(m.sessions), waitForHealth(m.healthCh)}
	if m.form != nil {
		cmds = append(cmds, m.form.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case sessionMsg:
		m.session = msg.session
		cmd := m.syncView()
		return m, tea.Batch(cmd, waitForSession(m.sessions))

	case healthMsg:
		m.setOnline(msg.obs.Online)
		return m, waitForHealth(m.healthCh)

	case healthCheckedMsg:
		m.setOnline(msg.obs.Online)
		m.result = "Salud de la API: " + ux.HealthIndicator(msg.obs.Online)
		return m, nil

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, m.resetForm(tabRegister, msg.username)
		}
		m.succeed(ux.MsgRegistered)
		return m, m.resetForm(tabLogin, msg.username)

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, m.resetForm(tabLogin, msg.username)
		}
		m.succeed(ux.MsgLoggedIn)
		m.result = ""
		if msg.result.User == nil {
			m.result = "Error: " + ux.MsgUserNotFound
		}
		m.session = m.deps.Service.State().Get()
		return m, m.syncView()

	case refreshDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			return m, nil
		}
		m.session = m.deps.Service.State().Get()
		m.message = ""
		m.result = ux.NewRefreshView(msg.tokens.AccessToken, msg.tokens.RefreshToken, msg.tokens.ExpiresIn, false).String()
		return m, nil

	case userDoneMsg:
		m.busy = false
		if msg.user == nil {
			m.result = "Error: " + ux.MsgUserNotFound
			return m, nil
		}
		m.session = m.deps.Service.State().Get()
		m.result = ux.NewUserView(msg.user).String()
		return m, nil

	case probeDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.result = ux.FormatError(msg.err)
			return m, nil
		}
		out, err := json.MarshalIndent(msg.result, "", "  ")
		if err != nil {
			m.result = ux.FormatError(err)
			return m, nil
		}
		m.result = string(out)
		return m, nil

	case logoutDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
			m.view = ViewDashboard
			return m, nil
		}
		if !msg.loggedOut {
			m.message = ux.MsgLogoutKept
			m.messageOK = true
			m.view = ViewDashboard
			return m, nil
		}
		m.succeed(ux.MsgLoggedOut)
		m.result = ""
		m.session = m.deps.Service.State().Get()
		return m, m.syncView()
	}

	return m.updateForm(msg)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Abort) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.view {
	case ViewAuth:
		if key.Matches(msg, keys.Switch) && !m.busy {
			next := tabRegister
			if m.tab == tabRegister {
				next = tabLogin
			}
			m.message = ""
			return m, m.resetForm(next, m.fields.username)
		}
		return m.updateForm(msg)

	case ViewProbe:
		if key.Matches(msg, keys.Back) {
			m.view = ViewDashboard
			m.form = nil
			return m, nil
		}
		return m.updateForm(msg)

	case ViewConfirmLogout:
		switch {
		case key.Matches(msg, keys.Yes):
			m.busy = true
			return m, logoutCmd(m.ctx, m.deps.Service, true)
		case key.Matches(msg, keys.No):
			m.busy = true
			return m, logoutCmd(m.ctx, m.deps.Service, false)
		}
		return m, nil
	}

	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Refresh):
		m.busy = true
		return m, refreshCmd(m.ctx, m.deps.Service)
	case key.Matches(msg, keys.User):
		m.busy = true
		return m, userCmd(m.ctx, m.deps.Service)
	case key.Matches(msg, keys.Health):
		m.result = ux.MsgChecking
		return m, healthCmd(m.ctx, m.deps.Health)
	case key.Matches(msg, keys.Probe):
		m.view = ViewProbe
		if m.fields.path == "" {
			m.fields.path = "/users/me"
		}
		m.form = newProbeForm(m.fields)
		return m, m.form.Init()
	case key.Matches(msg, keys.Logout):
		m.view = ViewConfirmLogout
		return m, nil
	}
	return m, nil
}

// updateForm forwards msg to the active form and submits it on completion.
func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.form == nil || m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
		if m.form.State == huh.StateCompleted {
			return m.submit()
		}
	}
	return m, cmd
}

// submit runs the operation for the completed form.
func (m Model) submit() (Model, tea.Cmd) {
	f := m.fields
	switch m.view {
	case ViewProbe:
		m.view = ViewDashboard
		m.form = nil
		m.busy = true
		m.result = ux.MsgChecking
		return m, probeCmd(m.ctx, m.deps.Prober, f.path)

	case ViewAuth:
		m.busy = true
		m.message = ""
		if m.tab == tabRegister {
			return m, registerCmd(m.ctx, m.deps.Service, f.username, f.password, f.confirm)
		}
		return m, loginCmd(m.ctx, m.deps.Service, f.username, f.password)
	}
	return m, nil
}

// syncView picks the view for the current session: the forms when logged
// out, the dashboard when logged in. An expired token stays on the
// dashboard so it can still be refreshed.
func (m *Model) syncView() tea.Cmd {
	active := m.session.IsAuthenticated
	switch {
	case !active && m.view != ViewAuth:
		m.view = ViewAuth
		return m.resetForm(tabLogin, m.fields.username)
	case !active && m.form == nil:
		return m.resetForm(m.tab, m.fields.username)
	case active && m.view == ViewAuth:
		m.view = ViewDashboard
		m.form = nil
	}
	return nil
}

// resetForm rebuilds the auth form for tab with the username prefilled and
// the passwords cleared.
func (m *Model) resetForm(tab authTab, username string) tea.Cmd {
	m.tab = tab
	m.fields.username = username
	m.fields.password = ""
	m.fields.confirm = ""
	if tab == tabRegister {
		m.form = newRegisterForm(m.fields)
	} else {
		m.form = newLoginForm(m.fields)
	}
	return m.form.Init()
}

func (m *Model) setOnline(online bool) {
	m.online = &online
}

func (m *Model) succeed(msg string) {
	m.message = msg
	m.messageOK = true
}

func (m *Model) fail(err error) {
	m.message = errors.UserMessage(err)
	m.messageOK = false
}

func newLoginForm(f *formFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Usuario").Value(&f.username),
			huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&f.password),
		),
	).WithShowHelp(false)
}

func newRegisterForm(f *formFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Usuario").Value(&f.username),
			huh.NewInput().Title("Contraseña").EchoMode(huh.EchoModePassword).Value(&f.password),
			huh.NewInput().Title("Confirmar contraseña").EchoMode(huh.EchoModePassword).Value(&f.confirm),
		),
	).WithShowHelp(false)
}

func newProbeForm(f *formFields) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Endpoint").Placeholder("/users/me").Value(&f.path),
		),
	).WithShowHelp(false)
}

package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/authdemo/internal/api"
	"github.com/felixgeelhaar/authdemo/internal/api/apitest"
	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/probe"
	"github.com/felixgeelhaar/authdemo/internal/session"
	"github.com/felixgeelhaar/authdemo/internal/store"
	"github.com/felixgeelhaar/authdemo/internal/ux"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestDeps(t *testing.T) (*apitest.Server, Deps) {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	clock := func() time.Time { return testNow }
	client := api.NewClient(srv.URL)
	state := session.NewState()
	svc := auth.NewService(client, state, session.NewPersistence(store.NewMemoryStore(), clock), auth.WithClock(clock))

	return srv, Deps{
		Service: svc,
		Prober:  probe.New(client, state),
		Health:  health.NewAPIChecker(client, nil),
		Now:     clock,
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press applies msg without running the returned command.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// step applies msg, runs the operation command it returns and applies the
// result. Only use it for keys that start an operation.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func submit(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := m.submit()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func loggedIn(t *testing.T) (*apitest.Server, Deps, Model) {
	t.Helper()
	srv, deps := newTestDeps(t)
	srv.AddUser("alice", "password123")

	m := NewModel(context.Background(), deps, nil, nil)
	m.fields.username = "alice"
	m.fields.password = "password123"
	m = submit(t, m)
	require.Equal(t, ViewDashboard, m.view)
	return srv, deps, m
}

func TestNewModelStartsOnLoginForm(t *testing.T) {
	_, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)

	assert.Equal(t, ViewAuth, m.view)
	assert.Equal(t, tabLogin, m.tab)
	require.NotNil(t, m.form)
	assert.Contains(t, m.View(), ux.StatusUnauthenticated)
	assert.Contains(t, m.View(), ux.MsgChecking)
}

func TestNewModelWithRestoredSession(t *testing.T) {
	_, deps := newTestDeps(t)
	expiry := testNow.Add(time.Minute)
	deps.Service.State().Set(session.Session{IsAuthenticated: true, AccessToken: "a", TokenExpiry: &expiry})

	m := NewModel(context.Background(), deps, nil, nil)
	assert.Equal(t, ViewDashboard, m.view)
	assert.Nil(t, m.form)
}

func TestSwitchTab(t *testing.T) {
	_, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)

	m = press(t, m, keyPress("ctrl+t"))
	assert.Equal(t, tabRegister, m.tab)

	m = press(t, m, keyPress("ctrl+t"))
	assert.Equal(t, tabLogin, m.tab)
}

func TestRegisterPrefillsLogin(t *testing.T) {
	srv, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)
	m = press(t, m, keyPress("ctrl+t"))

	m.fields.username = "alice"
	m.fields.password = "password123"
	m.fields.confirm = "password123"
	m = submit(t, m)

	assert.Equal(t, 1, int(srv.Count("/register")))
	assert.Equal(t, tabLogin, m.tab)
	assert.Equal(t, "alice", m.fields.username)
	assert.Empty(t, m.fields.password)
	assert.Equal(t, ux.MsgRegistered, m.message)
	assert.True(t, m.messageOK)
	assert.False(t, deps.Service.State().Get().IsAuthenticated)
}

func TestRegisterValidationError(t *testing.T) {
	srv, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)
	m = press(t, m, keyPress("ctrl+t"))

	m.fields.username = "alice"
	m.fields.password = "password123"
	m.fields.confirm = "different123"
	m = submit(t, m)

	assert.Zero(t, srv.Count("/register"))
	assert.Equal(t, tabRegister, m.tab)
	assert.Equal(t, "Las contraseñas no coinciden", m.message)
	assert.False(t, m.messageOK)
}

func TestLoginShowsDashboard(t *testing.T) {
	_, _, m := loggedIn(t)

	assert.Equal(t, ux.MsgLoggedIn, m.message)
	assert.Nil(t, m.form)

	m = press(t, m, tickMsg(testNow))
	view := m.View()
	assert.Contains(t, view, "✓ Autenticado como alice")
	assert.Contains(t, view, "30m 0s")
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	_, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)

	m.fields.username = "alice"
	m.fields.password = "wrongpass1"
	m = submit(t, m)

	assert.Equal(t, ViewAuth, m.view)
	assert.Equal(t, "Nombre de usuario o contraseña incorrectos", m.message)
	assert.Equal(t, "alice", m.fields.username)
}

func TestRefreshKey(t *testing.T) {
	srv, _, m := loggedIn(t)

	m = step(t, m, keyPress("r"))
	assert.False(t, m.busy)
	assert.Contains(t, m.result, ux.MsgRefreshed)
	assert.Equal(t, 1, int(srv.Count("/refresh")))
}

func TestRefreshFailureKeepsSession(t *testing.T) {
	srv, deps, m := loggedIn(t)
	before := deps.Service.State().Get()
	srv.Fail("/refresh", apitest.Failure{Status: 401, Detail: "invalid token"})

	m = step(t, m, keyPress("r"))
	assert.Equal(t, "invalid token", m.message)
	assert.Equal(t, before.AccessToken, deps.Service.State().Get().AccessToken)
}

func TestUserKey(t *testing.T) {
	srv, _, m := loggedIn(t)

	m = step(t, m, keyPress("u"))
	assert.Contains(t, m.result, "Usuario: alice")

	srv.Fail("/users/me", apitest.Failure{Status: 500})
	m = step(t, m, keyPress("u"))
	assert.Equal(t, "Error: "+ux.MsgUserNotFound, m.result)
}

func TestProbe(t *testing.T) {
	_, _, m := loggedIn(t)

	m = press(t, m, keyPress("p"))
	require.Equal(t, ViewProbe, m.view)
	assert.Equal(t, "/users/me", m.fields.path)

	m = submit(t, m)
	assert.Equal(t, ViewDashboard, m.view)
	assert.Contains(t, m.result, `"status": 200`)
	assert.Contains(t, m.result, `"username": "alice"`)
}

func TestProbeEscape(t *testing.T) {
	_, _, m := loggedIn(t)

	m = press(t, m, keyPress("p"))
	m = press(t, m, keyPress("esc"))
	assert.Equal(t, ViewDashboard, m.view)
	assert.Nil(t, m.form)
}

func TestHealthKeyAndFeed(t *testing.T) {
	srv, _, m := loggedIn(t)

	m = step(t, m, keyPress("h"))
	assert.Contains(t, m.View(), ux.HealthOnline)

	srv.SetHealthy(false)
	m = step(t, m, keyPress("h"))
	assert.Contains(t, m.View(), ux.HealthOffline)

	next, _ := m.Update(healthMsg{obs: health.Observation{Online: true}})
	assert.Contains(t, next.(Model).View(), ux.HealthOnline)
}

func TestLogoutDeclined(t *testing.T) {
	_, deps, m := loggedIn(t)

	m = press(t, m, keyPress("l"))
	require.Equal(t, ViewConfirmLogout, m.view)
	assert.Contains(t, m.View(), auth.LogoutPrompt)

	m = step(t, m, keyPress("n"))
	assert.Equal(t, ViewDashboard, m.view)
	assert.Equal(t, ux.MsgLogoutKept, m.message)
	assert.True(t, deps.Service.State().Get().IsAuthenticated)
}

func TestLogoutConfirmed(t *testing.T) {
	_, deps, m := loggedIn(t)

	m = press(t, m, keyPress("l"))
	m = step(t, m, keyPress("y"))

	assert.Equal(t, ViewAuth, m.view)
	assert.Equal(t, ux.MsgLoggedOut, m.message)
	assert.Equal(t, "alice", m.fields.username)
	assert.True(t, deps.Service.State().Get().IsZero())
}

func TestSessionFeedDrivesView(t *testing.T) {
	_, deps, m := loggedIn(t)
	feed, unsubscribe := SessionFeed(deps.Service.State())
	defer unsubscribe()
	m.sessions = feed

	deps.Service.State().Clear()

	next, cmd := m.Update(sessionMsg{session: <-feed})
	m = next.(Model)
	assert.Equal(t, ViewAuth, m.view)
	assert.NotNil(t, cmd)
}

func TestQuit(t *testing.T) {
	_, _, m := loggedIn(t)

	next, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, next.(Model).quitting)
	assert.Empty(t, next.(Model).View())
}

func TestCtrlCQuitsFromForm(t *testing.T) {
	_, deps := newTestDeps(t)
	m := NewModel(context.Background(), deps, nil, nil)

	_, cmd := m.Update(keyPress("ctrl+c"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBusyIgnoresKeys(t *testing.T) {
	_, _, m := loggedIn(t)
	m.busy = true

	next, cmd := m.Update(keyPress("r"))
	assert.Nil(t, cmd)
	assert.True(t, next.(Model).busy)
}

func TestFeedsKeepLatest(t *testing.T) {
	st := session.NewState()
	feed, unsubscribe := SessionFeed(st)

	st.Set(session.Session{AccessToken: "one"})
	st.Set(session.Session{AccessToken: "two"})
	assert.Equal(t, "two", (<-feed).AccessToken)

	unsubscribe()
	st.Set(session.Session{AccessToken: "three"})
	select {
	case s := <-feed:
		t.Fatalf("received %q after unsubscribe", s.AccessToken)
	default:
	}

	ch, onResult := HealthFeed()
	onResult(health.Observation{Online: false})
	onResult(health.Observation{Online: true})
	assert.True(t, (<-ch).Online)
}

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/authdemo/internal/auth"
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/probe"
	"github.com/felixgeelhaar/authdemo/internal/session"
)

// Messages delivered to the dashboard.

type sessionMsg struct{ session session.Session }

// healthMsg comes from the monitor feed; healthCheckedMsg from an on-demand
// check. Only the former re-arms the feed.
type healthMsg struct{ obs health.Observation }
type healthCheckedMsg struct{ obs health.Observation }

type tickMsg time.Time

type registerDoneMsg struct {
	username string
	err      error
}

type loginDoneMsg struct {
	username string
	result   *auth.LoginResult
	err      error
}

type refreshDoneMsg struct {
	tokens *auth.TokenSet
	err    error
}

type userDoneMsg struct{ user *session.User }

type probeDoneMsg struct {
	result *probe.Result
	err    error
}

type logoutDoneMsg struct {
	loggedOut bool
	err       error
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForSession(ch <-chan session.Session) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{session: s}
	}
}

func waitForHealth(ch <-chan health.Observation) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		obs, ok := <-ch
		if !ok {
			return nil
		}
		return healthMsg{obs: obs}
	}
}

func registerCmd(ctx context.Context, svc *auth.Service, username, password, confirm string) tea.Cmd {
	return func() tea.Msg {
		_, err := svc.Register(ctx, username, password, confirm)
		return registerDoneMsg{username: username, err: err}
	}
}

func loginCmd(ctx context.Context, svc *auth.Service, username, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := svc.Login(ctx, username, password)
		return loginDoneMsg{username: username, result: res, err: err}
	}
}

func refreshCmd(ctx context.Context, svc *auth.Service) tea.Cmd {
	return func() tea.Msg {
		tokens, err := svc.Refresh(ctx)
		return refreshDoneMsg{tokens: tokens, err: err}
	}
}

func userCmd(ctx context.Context, svc *auth.Service) tea.Cmd {
	return func() tea.Msg {
		return userDoneMsg{user: svc.FetchCurrentUser(ctx)}
	}
}

func probeCmd(ctx context.Context, p *probe.Prober, path string) tea.Cmd {
	return func() tea.Msg {
		res, err := p.Call(ctx, path)
		return probeDoneMsg{result: res, err: err}
	}
}

func healthCmd(ctx context.Context, p health.Prober) tea.Cmd {
	return func() tea.Msg {
		online := p.Probe(ctx)
		return healthCheckedMsg{obs: health.Observation{Online: online, CheckedAt: time.Now()}}
	}
}

// logoutCmd runs the logout with the answer already given on the
// confirmation screen.
func logoutCmd(ctx context.Context, svc *auth.Service, answer bool) tea.Cmd {
	return func() tea.Msg {
		ok, err := svc.LogoutWith(ctx, auth.ConfirmFunc(func(context.Context, string) (bool, error) {
			return answer, nil
		}))
		return logoutDoneMsg{loggedOut: ok, err: err}
	}
}

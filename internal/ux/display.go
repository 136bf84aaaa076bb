package ux

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/session"
)

// Status lines for the session header.
const (
	StatusUnauthenticated = "✗ No autenticado"
	statusAuthenticatedAs = "✓ Autenticado como %s"
	statusAuthenticated   = "✓ Autenticado"
)

// ClockLayout is the wall-clock part of the expiry countdown.
const ClockLayout = "15:04:05"

// StatusLine summarizes s at now. A session whose token has expired reads
// as unauthenticated even if it is still held.
func StatusLine(s session.Session, now time.Time) string {
	if !s.Active(now) {
		return StatusUnauthenticated
	}
	if s.User == nil || s.User.Username == "" {
		return statusAuthenticated
	}
	return fmt.Sprintf(statusAuthenticatedAs, s.User.Username)
}

// FormatCountdown renders the time left on a token as "<m>m <s>s (<clock>)",
// with the expiry shown in local time. Time already past renders as 0m 0s.
func FormatCountdown(expiry, now time.Time) string {
	left := expiry.Sub(now)
	if left < 0 {
		left = 0
	}
	minutes := int(left / time.Minute)
	seconds := int((left % time.Minute) / time.Second)
	return fmt.Sprintf("%dm %ds (%s)", minutes, seconds, expiry.Local().Format(ClockLayout))
}

// UserView is the user record as displayed.
type UserView struct {
	ID        int64  `json:"id" yaml:"id"`
	Username  string `json:"username" yaml:"username"`
	CreatedAt string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// NewUserView converts u for display. The creation time is shown in local
// time when it parses.
func NewUserView(u *session.User) *UserView {
	if u == nil {
		return nil
	}
	v := &UserView{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
	if t, ok := u.Created(); ok {
		v.CreatedAt = t.Local().Format("2006-01-02 15:04:05")
	}
	return v
}

// String renders the user as labelled lines.
func (v *UserView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usuario: %s\n", v.Username)
	fmt.Fprintf(&b, "ID:      %d", v.ID)
	if v.CreatedAt != "" {
		fmt.Fprintf(&b, "\nCreado:  %s", v.CreatedAt)
	}
	return b.String()
}

// SessionView is the status command's output.
type SessionView struct {
	Status        string     `json:"status" yaml:"status"`
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	User          *UserView  `json:"user,omitempty" yaml:"user,omitempty"`
	AccessToken   string     `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	RefreshToken  string     `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenExpiry   *time.Time `json:"token_expiry,omitempty" yaml:"token_expiry,omitempty"`
	ExpiresIn     string     `json:"expires_in,omitempty" yaml:"expires_in,omitempty"`
	Expired       bool       `json:"expired" yaml:"expired"`
	Claims        *Claims    `json:"claims,omitempty" yaml:"claims,omitempty"`
}

// NewSessionView builds the view of s at now. Tokens are masked unless
// reveal is set.
func NewSessionView(s session.Session, now time.Time, reveal bool) SessionView {
	v := SessionView{
		Status:        StatusLine(s, now),
		Authenticated: s.Active(now),
		User:          NewUserView(s.User),
		AccessToken:   maybeMask(s.AccessToken, reveal),
		RefreshToken:  maybeMask(s.RefreshToken, reveal),
		Expired:       s.Expired(now),
	}
	if s.TokenExpiry != nil {
		t := *s.TokenExpiry
		v.TokenExpiry = &t
		v.ExpiresIn = FormatCountdown(t, now)
	}
	if s.AccessToken != "" {
		if c, err := DecodeClaims(s.AccessToken); err == nil {
			v.Claims = c
		}
	}
	return v
}

// String renders the view for the text format.
func (v SessionView) String() string {
	var b strings.Builder
	b.WriteString(v.Status)
	if v.User != nil {
		b.WriteString("\n\n")
		b.WriteString(v.User.String())
	}
	if v.AccessToken != "" {
		fmt.Fprintf(&b, "\n\nAccess token:  %s", v.AccessToken)
	}
	if v.RefreshToken != "" {
		fmt.Fprintf(&b, "\nRefresh token: %s", v.RefreshToken)
	}
	if v.ExpiresIn != "" {
		fmt.Fprintf(&b, "\nExpira en:     %s", v.ExpiresIn)
	}
	if v.Claims != nil {
		fmt.Fprintf(&b, "\nClaims:        sub=%s", v.Claims.Subject)
		if v.Claims.Type != "" {
			fmt.Fprintf(&b, " type=%s", v.Claims.Type)
		}
	}
	return b.String()
}

// RefreshView is the result of a successful refresh.
type RefreshView struct {
	Message        string `json:"message" yaml:"message"`
	NewAccessToken string `json:"new_access_token" yaml:"new_access_token"`
	RefreshToken   string `json:"refresh_token" yaml:"refresh_token"`
	ExpiresIn      int64  `json:"expires_in" yaml:"expires_in"`
}

// NewRefreshView builds the refresh result. Tokens are masked unless reveal
// is set.
func NewRefreshView(accessToken, refreshToken string, expiresIn int64, reveal bool) RefreshView {
	return RefreshView{
		Message:        MsgRefreshed,
		NewAccessToken: maybeMask(accessToken, reveal),
		RefreshToken:   maybeMask(refreshToken, reveal),
		ExpiresIn:      expiresIn,
	}
}

// String renders the refresh result for the text format.
func (v RefreshView) String() string {
	return v.Message + "\n\n" +
		"Access token:  " + v.NewAccessToken + "\n" +
		"Refresh token: " + v.RefreshToken + "\n" +
		"Expira en:     " + strconv.FormatInt(v.ExpiresIn, 10) + "s"
}

func maybeMask(token string, reveal bool) string {
	if reveal {
		return token
	}
	return log.MaskToken(token)
}

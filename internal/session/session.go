package session

import (
	"encoding/json"
	"fmt"
	"time"
)

// User is the profile record returned by the API. Fields the client does not
// know about are kept in Extra so they survive a save/load round-trip.
type User struct {
	ID        int64          `json:"id"`
	Username  string         `json:"username"`
	CreatedAt string         `json:"created_at,omitempty"`
	Extra     map[string]any `json:"-"`
}

var userLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// Created parses CreatedAt. Servers may omit the zone; such values are read
// as UTC.
func (u *User) Created() (time.Time, bool) {
	if u == nil || u.CreatedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range userLayouts {
		if t, err := time.Parse(layout, u.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Clone returns a deep copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Extra != nil {
		c.Extra = make(map[string]any, len(u.Extra))
		for k, v := range u.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// UnmarshalJSON decodes the known fields and stores the rest in Extra.
func (u *User) UnmarshalJSON(data []byte) error {
	type known User
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	delete(all, "id")
	delete(all, "username")
	delete(all, "created_at")

	*u = User(k)
	if len(all) > 0 {
		u.Extra = all
	} else {
		u.Extra = nil
	}
	return nil
}

// MarshalJSON encodes the known fields merged with Extra.
func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+3)
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["username"] = u.Username
	if u.CreatedAt != "" {
		out["created_at"] = u.CreatedAt
	}
	return json.Marshal(out)
}

// Session is the client-held authentication state. Empty token strings stand
// for absent tokens.
type Session struct {
	IsAuthenticated bool
	User            *User
	AccessToken     string
	RefreshToken    string
	TokenExpiry     *time.Time
}

// Clone returns a deep copy that shares no pointers with s.
func (s Session) Clone() Session {
	c := s
	c.User = s.User.Clone()
	if s.TokenExpiry != nil {
		t := *s.TokenExpiry
		c.TokenExpiry = &t
	}
	return c
}

// IsZero reports whether s is the empty session.
func (s Session) IsZero() bool {
	return !s.IsAuthenticated && s.User == nil && s.AccessToken == "" &&
		s.RefreshToken == "" && s.TokenExpiry == nil
}

// Validate checks the session invariants.
func (s Session) Validate() error {
	if s.IsAuthenticated && s.AccessToken == "" {
		return fmt.Errorf("authenticated session has no access token")
	}
	return nil
}

// Expired reports whether the access token expiry is before now. A session
// without an expiry never expires locally.
func (s Session) Expired(now time.Time) bool {
	return s.TokenExpiry != nil && s.TokenExpiry.Before(now)
}

// Active reports whether the session can make authenticated calls at now.
func (s Session) Active(now time.Time) bool {
	return s.IsAuthenticated && s.AccessToken != "" && !s.Expired(now)
}

// TimeLeft returns how long the access token remains valid. It is zero when
// there is no expiry and negative once expired.
func (s Session) TimeLeft(now time.Time) time.Duration {
	if s.TokenExpiry == nil {
		return 0
	}
	return s.TokenExpiry.Sub(now)
}

// ExpiryFrom computes an absolute expiry from an expires_in value in seconds.
func ExpiryFrom(now time.Time, expiresIn int64) time.Time {
	return now.Add(time.Duration(expiresIn) * time.Second)
}

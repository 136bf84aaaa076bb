package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONKeepsUnknownFields(t *testing.T) {
	raw := `{"id":7,"username":"alice","created_at":"2024-05-01T10:00:00","email":"a@example.com"}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@example.com", u.Extra["email"])

	out, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestUserCreated(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"rfc3339", "2024-05-01T10:00:00Z", true},
		{"naive", "2024-05-01T10:00:00.123456", true},
		{"space separated", "2024-05-01 10:00:00", true},
		{"empty", "", false},
		{"garbage", "yesterday", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{CreatedAt: tt.value}
			got, ok := u.Created()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, 2024, got.Year())
			}
		})
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	exp := time.Now()
	s := Session{
		IsAuthenticated: true,
		AccessToken:     "a",
		User:            &User{ID: 1, Username: "bob", Extra: map[string]any{"k": "v"}},
		TokenExpiry:     &exp,
	}

	c := s.Clone()
	c.User.Username = "mallory"
	c.User.Extra["k"] = "changed"
	*c.TokenExpiry = exp.Add(time.Hour)

	assert.Equal(t, "bob", s.User.Username)
	assert.Equal(t, "v", s.User.Extra["k"])
	assert.True(t, s.TokenExpiry.Equal(exp))
}

func TestSessionValidate(t *testing.T) {
	assert.NoError(t, Session{}.Validate())
	assert.NoError(t, Session{IsAuthenticated: true, AccessToken: "x"}.Validate())
	assert.Error(t, Session{IsAuthenticated: true}.Validate())
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(90 * time.Second)

	assert.False(t, Session{}.Expired(now))
	assert.True(t, Session{TokenExpiry: &past}.Expired(now))
	assert.False(t, Session{TokenExpiry: &future}.Expired(now))

	active := Session{IsAuthenticated: true, AccessToken: "a", TokenExpiry: &future}
	assert.True(t, active.Active(now))
	assert.Equal(t, 90*time.Second, active.TimeLeft(now))

	active.TokenExpiry = &past
	assert.False(t, active.Active(now))
	assert.Equal(t, time.Duration(0), Session{}.TimeLeft(now))
}

func TestExpiryFrom(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(30*time.Minute), ExpiryFrom(now, 1800))
}

package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateGetReturnsCopy(t *testing.T) {
	st := NewState()
	st.Set(Session{IsAuthenticated: true, AccessToken: "a", User: &User{Username: "alice"}})

	got := st.Get()
	got.User.Username = "eve"
	got.AccessToken = "b"

	again := st.Get()
	assert.Equal(t, "alice", again.User.Username)
	assert.Equal(t, "a", again.AccessToken)
}

func TestStateUpdate(t *testing.T) {
	st := NewState()
	st.Set(Session{IsAuthenticated: true, AccessToken: "a"})

	got := st.Update(func(s *Session) {
		s.User = &User{ID: 3, Username: "carol"}
	})

	require.NotNil(t, got.User)
	assert.Equal(t, "carol", st.Get().User.Username)
	assert.Equal(t, "a", st.Get().AccessToken)
}

func TestStateClearAdvancesEpoch(t *testing.T) {
	st := NewState()
	st.Set(Session{IsAuthenticated: true, AccessToken: "a"})

	_, epoch := st.Snapshot()
	st.Clear()

	assert.True(t, st.Get().IsZero())
	assert.Equal(t, epoch+1, st.Epoch())
}

func TestStateRejectsStaleWrite(t *testing.T) {
	st := NewState()
	st.Set(Session{IsAuthenticated: true, AccessToken: "a"})
	_, epoch := st.Snapshot()

	// logout happens while a user fetch is in flight
	st.Clear()

	_, applied := st.UpdateIfEpoch(epoch, func(s *Session) {
		s.User = &User{Username: "ghost"}
	})
	assert.False(t, applied)
	assert.True(t, st.Get().IsZero())

	ok := st.SetIfEpoch(epoch, Session{IsAuthenticated: true, AccessToken: "stale"})
	assert.False(t, ok)
	assert.True(t, st.Get().IsZero())

	ok = st.SetIfEpoch(st.Epoch(), Session{IsAuthenticated: true, AccessToken: "fresh"})
	assert.True(t, ok)
	assert.Equal(t, "fresh", st.Get().AccessToken)
}

func TestStateSubscribe(t *testing.T) {
	st := NewState()

	var seen []Session
	unsubscribe := st.Subscribe(func(s Session) {
		seen = append(seen, s)
	})

	st.Set(Session{IsAuthenticated: true, AccessToken: "a"})
	st.Update(func(s *Session) { s.RefreshToken = "r" })
	st.Clear()
	unsubscribe()
	st.Set(Session{IsAuthenticated: true, AccessToken: "b"})

	require.Len(t, seen, 3)
	assert.Equal(t, "a", seen[0].AccessToken)
	assert.Equal(t, "r", seen[1].RefreshToken)
	assert.True(t, seen[2].IsZero())
}

func TestStateConcurrentAccess(t *testing.T) {
	st := NewState()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Update(func(s *Session) {
				s.IsAuthenticated = true
				s.AccessToken = "token"
			})
		}()
		go func() {
			defer wg.Done()
			s := st.Get()
			assert.NoError(t, s.Validate())
		}()
	}
	wg.Wait()

	assert.Equal(t, "token", st.Get().AccessToken)
}

func TestStateResetStartsNewEpoch(t *testing.T) {
	st := NewState()
	st.Set(Session{IsAuthenticated: true, AccessToken: "old"})
	_, before := st.Snapshot()

	epoch := st.Reset(Session{IsAuthenticated: true, AccessToken: "new"})
	assert.Equal(t, before+1, epoch)

	_, applied := st.UpdateIfEpoch(before, func(s *Session) { s.User = &User{Username: "old-user"} })
	assert.False(t, applied)
	assert.Nil(t, st.Get().User)
	assert.Equal(t, "new", st.Get().AccessToken)
}

package tui

import (
	"github.com/felixgeelhaar/authdemo/internal/health"
	"github.com/felixgeelhaar/authdemo/internal/session"
)

// SessionFeed subscribes to st and exposes changes as a channel holding at
// most the latest session. Call the returned func to unsubscribe.
func SessionFeed(st *session.State) (<-chan session.Session, func()) {
	ch := make(chan session.Session, 1)
	unsubscribe := st.Subscribe(func(s session.Session) { offer(ch, s) })
	return ch, unsubscribe
}

// HealthFeed returns a channel holding at most the latest observation and a
// callback suitable for health.OnResult.
func HealthFeed() (<-chan health.Observation, func(health.Observation)) {
	ch := make(chan health.Observation, 1)
	return ch, func(o health.Observation) { offer(ch, o) }
}

// offer replaces any value still waiting in ch with v.
func offer[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

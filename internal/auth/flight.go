package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// flight is the context shared by every caller waiting on one singleflight
// call. It is cancelled once the last waiter has left.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// share runs fn once per key across concurrent callers. fn gets a context
// detached from any single caller: a caller that gives up returns its own
// ctx.Err() while the others keep waiting, and the request is only
// cancelled when nobody is waiting any more.
func (s *Service) share(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, bool, error) {
	f := s.join(ctx, key)

	ch := s.group.DoChan(key, func() (any, error) {
		return fn(f.ctx)
	})

	select {
	case r := <-ch:
		s.leave(key, f)
		return r.Val, r.Shared, r.Err
	case <-ctx.Done():
		s.leave(key, f)
		return nil, false, ctx.Err()
	}
}

func (s *Service) join(ctx context.Context, key string) *flight {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()

	if s.flights == nil {
		s.flights = make(map[string]*flight)
	}
	f, ok := s.flights[key]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		s.flights[key] = f
	}
	f.waiters++
	return f
}

func (s *Service) leave(key string, f *flight) {
	s.flightMu.Lock()
	defer s.flightMu.Unlock()

	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if s.flights[key] == f {
		delete(s.flights, key)
		// Later callers must not join the call that was just cancelled.
		s.group.Forget(key)
	}
}

// loginKey identifies a login by its full credentials so that only
// identical attempts share a request.
func loginKey(username, password string) string {
	sum := sha256.Sum256([]byte(password))
	return "login:" + username + "\x00" + hex.EncodeToString(sum[:])
}

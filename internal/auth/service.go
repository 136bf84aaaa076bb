// Package auth implements the client-side session lifecycle: register,
// login, current-user fetch, token refresh, logout and startup restore.
//
// Every operation goes through the remote API first and only then mutates
// the shared session.State, which is mirrored to persistence. Operations
// never retry: one failed call surfaces one error.
package auth

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/felixgeelhaar/authdemo/internal/api"
	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/log"
	"github.com/felixgeelhaar/authdemo/internal/metrics"
	"github.com/felixgeelhaar/authdemo/internal/session"
	"github.com/felixgeelhaar/authdemo/internal/telemetry"
)

// API is the subset of the remote contract the service needs.
type API interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	CurrentUser(ctx context.Context, accessToken string) (*session.User, error)
}

// RegisterResult is returned by a successful registration so the caller
// can prefill the login form.
type RegisterResult struct {
	Username string
}

// TokenSet is the outcome of a login or refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	Expiry       time.Time
}

// LoginResult carries the new tokens and, when the follow-up fetch
// succeeded, the user profile.
type LoginResult struct {
	Tokens TokenSet
	User   *session.User
}

// Service runs auth operations against a shared session.State.
type Service struct {
	api       API
	state     *session.State
	persist   *session.Persistence
	confirmer Confirmer
	now       func() time.Time
	logger    *log.Logger
	metrics   *metrics.Metrics
	group     singleflight.Group

	flightMu sync.Mutex
	flights  map[string]*flight
}

// Option configures a Service
type Option func(*Service)

// WithConfirmer sets the gate used by Logout.
func WithConfirmer(c Confirmer) Option {
	return func(s *Service) { s.confirmer = c }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records operation outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service. The confirmer defaults to NeverConfirm.
func NewService(client API, state *session.State, persist *session.Persistence, opts ...Option) *Service {
	s := &Service{
		api:       client,
		state:     state,
		persist:   persist,
		confirmer: NeverConfirm,
		now:       time.Now,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the session the service mutates.
func (s *Service) State() *session.State {
	return s.state
}

// Restore rehydrates the session from persistence. It never fails: an
// unreadable or malformed slot yields the empty session. An expired record
// is kept without its access token and the slot is purged.
func (s *Service) Restore(ctx context.Context) session.LoadResult {
	res, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.WithError(err).DebugContext(ctx, "discarding stored session")
		return session.LoadResult{}
	}
	if !res.Found {
		return res
	}

	if res.Expired {
		res.Session.IsAuthenticated = false
		res.Session.AccessToken = ""
		if err := s.persist.Purge(ctx); err != nil {
			s.logger.WithError(err).WarnContext(ctx, "failed to purge expired session")
		}
		s.logger.InfoContext(ctx, "stored session expired")
	}

	s.state.Set(res.Session)
	return res
}

// Register validates the input locally, then creates the account. The
// session is not touched.
func (s *Service) Register(ctx context.Context, username, password, passwordConfirm string) (*RegisterResult, error) {
	ctx, span := telemetry.StartAuthSpan(ctx, "register")
	defer span.End()

	if err := ValidateRegistration(username, password, passwordConfirm); err != nil {
		s.finish(ctx, span, "register", err)
		return nil, err
	}

	if err := s.api.Register(ctx, username, password); err != nil {
		s.finish(ctx, span, "register", err)
		return nil, err
	}

	s.finish(ctx, span, "register", nil)
	return &RegisterResult{Username: username}, nil
}

// Login exchanges credentials for tokens, stores them, then fetches the
// user profile. Concurrent logins with identical credentials share one
// request.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	ctx, span := telemetry.StartAuthSpan(ctx, "login")
	defer span.End()

	v, shared, err := s.share(ctx, loginKey(username, password), func(ctx context.Context) (any, error) {
		tokens, err := s.api.Login(ctx, username, password)
		if err != nil {
			return nil, err
		}

		set := s.tokenSet(tokens)
		expiry := set.Expiry
		s.state.Reset(session.Session{
			IsAuthenticated: true,
			AccessToken:     set.AccessToken,
			RefreshToken:    set.RefreshToken,
			TokenExpiry:     &expiry,
		})
		s.save(ctx)

		return &LoginResult{Tokens: set, User: s.FetchCurrentUser(ctx)}, nil
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	s.finish(ctx, span, "login", err)
	if err != nil {
		return nil, err
	}

	res := *v.(*LoginResult)
	return &res, nil
}

// FetchCurrentUser loads the profile for the current access token and
// stores it in the session. Any failure returns nil and leaves the session
// unchanged. A result that arrives after a logout or re-login is dropped.
func (s *Service) FetchCurrentUser(ctx context.Context) *session.User {
	current, epoch := s.state.Snapshot()
	if current.AccessToken == "" {
		return nil
	}

	user, err := s.api.CurrentUser(ctx, current.AccessToken)
	if err != nil {
		s.logger.WithError(err).WarnContext(ctx, "failed to fetch current user")
		s.record("current_user", err)
		return nil
	}

	_, applied := s.state.UpdateIfEpoch(epoch, func(sess *session.Session) {
		sess.User = user.Clone()
	})
	if !applied {
		s.logger.DebugContext(ctx, "dropping user fetched for an ended session")
		s.record("current_user", errSessionEnded())
		return nil
	}

	s.save(ctx)
	s.record("current_user", nil)
	return user
}

// Refresh obtains a new token pair using the stored refresh token.
// Concurrent refreshes share one request.
func (s *Service) Refresh(ctx context.Context) (*TokenSet, error) {
	ctx, span := telemetry.StartAuthSpan(ctx, "refresh")
	defer span.End()

	current, epoch := s.state.Snapshot()
	if current.RefreshToken == "" {
		err := errors.Validation(errors.ErrCodeNoRefreshToken, "No hay un refresh token disponible. Inicia sesión primero.")
		s.finish(ctx, span, "refresh", err)
		return nil, err
	}

	v, shared, err := s.share(ctx, "refresh", func(ctx context.Context) (any, error) {
		tokens, err := s.api.Refresh(ctx, current.RefreshToken)
		if err != nil {
			return nil, err
		}

		set := s.tokenSet(tokens)
		if set.RefreshToken == "" {
			set.RefreshToken = current.RefreshToken
		}
		expiry := set.Expiry

		_, applied := s.state.UpdateIfEpoch(epoch, func(sess *session.Session) {
			sess.IsAuthenticated = true
			sess.AccessToken = set.AccessToken
			sess.RefreshToken = set.RefreshToken
			sess.TokenExpiry = &expiry
		})
		if !applied {
			return nil, errSessionEnded()
		}
		s.save(ctx)
		return &set, nil
	})
	span.SetAttributes(attribute.Bool("shared", shared))
	s.finish(ctx, span, "refresh", err)
	if err != nil {
		return nil, err
	}

	set := *v.(*TokenSet)
	return &set, nil
}

// Logout asks the configured Confirmer and, on yes, clears the session and
// purges persistence. It reports whether the logout happened.
func (s *Service) Logout(ctx context.Context) (bool, error) {
	return s.LogoutWith(ctx, s.confirmer)
}

// LogoutWith is Logout with an explicit Confirmer. A nil Confirmer declines.
func (s *Service) LogoutWith(ctx context.Context, c Confirmer) (bool, error) {
	if c == nil {
		return false, nil
	}

	ok, err := c.Confirm(ctx, LogoutPrompt)
	if err != nil {
		return false, err
	}
	if !ok {
		if s.metrics != nil {
			s.metrics.RecordAuthOperation("logout", "declined")
		}
		return false, nil
	}

	s.state.Clear()
	if err := s.persist.Purge(ctx); err != nil {
		s.logger.WithError(err).WarnContext(ctx, "failed to purge stored session")
	}
	s.logger.InfoContext(ctx, "logged out")
	s.record("logout", nil)
	return true, nil
}

// AccessTokenExpired reports whether the current access token has passed
// its expiry. Nothing refreshes automatically; callers decide what to show.
func (s *Service) AccessTokenExpired() bool {
	return s.state.Get().Expired(s.now())
}

func (s *Service) tokenSet(t *api.TokenResponse) TokenSet {
	return TokenSet{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		Expiry:       session.ExpiryFrom(s.now(), t.ExpiresIn),
	}
}

// save persists the current session. Failures are logged, not surfaced.
func (s *Service) save(ctx context.Context) {
	if err := s.persist.Save(ctx, s.state.Get()); err != nil {
		s.logger.WithError(err).WarnContext(ctx, "failed to persist session")
		if s.metrics != nil {
			s.metrics.RecordError(string(errors.CodeOf(err)))
		}
	}
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.WithError(err).DebugContext(ctx, op+" failed")
	} else {
		telemetry.RecordSuccess(span)
	}
	s.record(op, err)
}

// record counts an operation outcome, labelled by error kind on failure.
func (s *Service) record(op string, err error) {
	if s.metrics == nil {
		return
	}
	if err == nil {
		s.metrics.RecordAuthOperation(op, "success")
		return
	}

	result := string(errors.KindOf(err))
	if result == "" {
		result = "error"
	}
	s.metrics.RecordAuthOperation(op, result)
	s.metrics.RecordError(string(errors.CodeOf(err)))
}

func errSessionEnded() *errors.Error {
	return errors.Validation(errors.ErrCodeSessionEnded, "La sesión se cerró mientras se completaba la operación")
}

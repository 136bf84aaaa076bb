package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/authdemo/internal/errors"
	"github.com/felixgeelhaar/authdemo/internal/store"
)

// expiryLayout matches the ISO-8601 form browsers produce: UTC with milliseconds.
const expiryLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is the persisted JSON shape of a Session.
type Record struct {
	IsAuthenticated bool    `json:"isAuthenticated"`
	User            *User   `json:"user"`
	AccessToken     *string `json:"accessToken"`
	RefreshToken    *string `json:"refreshToken"`
	TokenExpiry     *string `json:"tokenExpiry"`
}

// NewRecord converts a Session into its persisted form.
func NewRecord(s Session) Record {
	rec := Record{
		IsAuthenticated: s.IsAuthenticated,
		User:            s.User.Clone(),
		AccessToken:     nullable(s.AccessToken),
		RefreshToken:    nullable(s.RefreshToken),
	}
	if s.TokenExpiry != nil {
		v := s.TokenExpiry.UTC().Format(expiryLayout)
		rec.TokenExpiry = &v
	}
	return rec
}

// Session converts the record back. It fails when tokenExpiry cannot be parsed.
func (r Record) Session() (Session, error) {
	s := Session{
		IsAuthenticated: r.IsAuthenticated,
		User:            r.User.Clone(),
		AccessToken:     deref(r.AccessToken),
		RefreshToken:    deref(r.RefreshToken),
	}
	if r.TokenExpiry != nil && *r.TokenExpiry != "" {
		t, err := time.Parse(time.RFC3339Nano, *r.TokenExpiry)
		if err != nil {
			return Session{}, err
		}
		s.TokenExpiry = &t
	}
	if s.IsAuthenticated && s.AccessToken == "" {
		s.IsAuthenticated = false
	}
	return s, nil
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// LoadResult describes what was found in the slot.
type LoadResult struct {
	Session Session
	// Found is false when the slot was empty, unreadable or malformed.
	Found bool
	// Expired is true when the stored token expiry is already in the past.
	Expired bool
}

// Persistence mirrors sessions to a store.Store.
type Persistence struct {
	store store.Store
	now   func() time.Time
}

// NewPersistence creates a Persistence over st. A nil clock means time.Now.
func NewPersistence(st store.Store, now func() time.Time) *Persistence {
	if now == nil {
		now = time.Now
	}
	return &Persistence{store: st, now: now}
}

// Store returns the underlying slot.
func (p *Persistence) Store() store.Store {
	return p.store
}

// Save writes s to the slot.
func (p *Persistence) Save(ctx context.Context, s Session) error {
	data, err := json.Marshal(NewRecord(s))
	if err != nil {
		return errors.Persistence(errors.ErrCodeStoreWrite, "failed to encode session", err)
	}
	if err := p.store.Write(ctx, data); err != nil {
		return errors.Persistence(errors.ErrCodeStoreWrite, "failed to write session", err)
	}
	return nil
}

// Load reads the slot. A malformed slot is purged and reported as not found
// together with a STORE-001 error; a read failure is reported as not found
// with STORE-002. Callers treat both as "no session".
func (p *Persistence) Load(ctx context.Context) (LoadResult, error) {
	data, err := p.store.Read(ctx)
	if err != nil {
		return LoadResult{}, errors.Persistence(errors.ErrCodeStoreRead, "failed to read session", err)
	}
	if len(data) == 0 {
		return LoadResult{}, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return LoadResult{}, p.discard(ctx, err)
	}
	s, err := rec.Session()
	if err != nil {
		return LoadResult{}, p.discard(ctx, err)
	}

	return LoadResult{
		Session: s,
		Found:   true,
		Expired: s.Expired(p.now()),
	}, nil
}

// Purge removes the slot.
func (p *Persistence) Purge(ctx context.Context) error {
	if err := p.store.Purge(ctx); err != nil {
		return errors.Persistence(errors.ErrCodeStoreWrite, "failed to purge session", err)
	}
	return nil
}

func (p *Persistence) discard(ctx context.Context, cause error) error {
	_ = p.store.Purge(ctx)
	return errors.Persistence(errors.ErrCodeStoreCorrupt, "stored session is malformed", cause)
}

package session

import (
	"sync"
)

// Observer receives a copy of the session after every change.
type Observer func(Session)

// State is the single owned instance of the current session. It is passed
// explicitly to every component that reads or mutates the session.
//
// Every Clear advances an epoch. A caller that starts an asynchronous
// operation takes a Snapshot and later applies its result with the
// epoch-guarded setters, so a response that arrives after a logout cannot
// bring the old session back.
type State struct {
	mu        sync.RWMutex
	current   Session
	epoch     uint64
	observers map[int]Observer
	nextID    int
}

// NewState creates a State holding the empty session.
func NewState() *State {
	return &State{observers: make(map[int]Observer)}
}

// Get returns a copy of the current session.
func (st *State) Get() Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Clone()
}

// Snapshot returns a copy of the current session and its epoch.
func (st *State) Snapshot() (Session, uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Clone(), st.epoch
}

// Epoch returns the number of times the session has been cleared.
func (st *State) Epoch() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.epoch
}

// Set replaces the whole session.
func (st *State) Set(s Session) {
	st.mu.Lock()
	st.current = s.Clone()
	snapshot := st.current.Clone()
	observers := st.observerList()
	st.mu.Unlock()

	notify(observers, snapshot)
}

// Update applies fn to the session under the lock.
func (st *State) Update(fn func(*Session)) Session {
	st.mu.Lock()
	next := st.current.Clone()
	fn(&next)
	st.current = next
	snapshot := next.Clone()
	observers := st.observerList()
	st.mu.Unlock()

	notify(observers, snapshot)
	return snapshot
}

// UpdateIfEpoch applies fn only if no Clear happened since epoch was observed.
// It returns the resulting session and whether fn was applied.
func (st *State) UpdateIfEpoch(epoch uint64, fn func(*Session)) (Session, bool) {
	st.mu.Lock()
	if st.epoch != epoch {
		current := st.current.Clone()
		st.mu.Unlock()
		return current, false
	}
	next := st.current.Clone()
	fn(&next)
	st.current = next
	snapshot := next.Clone()
	observers := st.observerList()
	st.mu.Unlock()

	notify(observers, snapshot)
	return snapshot, true
}

// SetIfEpoch replaces the session only if no Clear happened since epoch was
// observed.
func (st *State) SetIfEpoch(epoch uint64, s Session) bool {
	_, ok := st.UpdateIfEpoch(epoch, func(cur *Session) { *cur = s.Clone() })
	return ok
}

// Reset replaces the session and starts a new epoch, as Clear does. It is
// used when a new identity logs in so that work started for the previous
// identity cannot write into the new one. It returns the new epoch.
func (st *State) Reset(s Session) uint64 {
	st.mu.Lock()
	st.current = s.Clone()
	st.epoch++
	epoch := st.epoch
	snapshot := st.current.Clone()
	observers := st.observerList()
	st.mu.Unlock()

	notify(observers, snapshot)
	return epoch
}

// Clear resets to the empty session and advances the epoch.
func (st *State) Clear() {
	st.mu.Lock()
	st.current = Session{}
	st.epoch++
	observers := st.observerList()
	st.mu.Unlock()

	notify(observers, Session{})
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run synchronously on the goroutine that changed the session and
// must not call back into State.
func (st *State) Subscribe(fn Observer) func() {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextID
	st.nextID++
	st.observers[id] = fn

	return func() {
		st.mu.Lock()
		defer st.mu.Unlock()
		delete(st.observers, id)
	}
}

func (st *State) observerList() []Observer {
	list := make([]Observer, 0, len(st.observers))
	for _, fn := range st.observers {
		list = append(list, fn)
	}
	return list
}

func notify(observers []Observer, s Session) {
	for _, fn := range observers {
		fn(s.Clone())
	}
}

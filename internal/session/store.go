// Package session holds the observable per-browser-session auth state and the
// guards that react to it.
package session

import (
	"errors"
	"slices"
	"sync"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

var (
	// ErrUnresolved is returned when loading is cleared before any identity resolution.
	ErrUnresolved = errors.New("session: loading cannot end before identity resolution")
	// ErrLoadingRegression is returned when loading is set again after resolution.
	ErrLoadingRegression = errors.New("session: loading cannot restart after resolution")
)

// Listener receives the state produced by a mutation.
type Listener func(domainauth.State)

type subscription struct {
	id uint64
	fn Listener
}

// Store is the single source of truth for one browser session's auth state.
// It starts as {Identity: nil, Loading: true}.
//
// Listeners run after every mutation in subscription order, outside the
// store's lock, so they may read or mutate the store. States are delivered in
// mutation order; when mutations race, the goroutine already delivering
// delivers the later states too.
type Store struct {
	mu         sync.Mutex
	state      domainauth.State
	resolved   bool
	subs       []subscription
	nextID     uint64
	queue      []domainauth.State
	delivering bool
}

// NewStore returns a store in the initial loading state.
func NewStore() *Store {
	return &Store{state: domainauth.State{Loading: true}}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domainauth.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Identity returns a copy of the current identity, or nil.
func (s *Store) Identity() *domainauth.Identity {
	return s.Snapshot().Identity
}

// Resolved reports whether an identity resolution has completed.
func (s *Store) Resolved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// SetIdentity records the outcome of an identity resolution. nil means logged out.
// Loading is left as is; pair with SetLoading(false) or use Resolve.
func (s *Store) SetIdentity(id *domainauth.Identity) {
	s.mu.Lock()
	s.resolved = true
	s.state.Identity = cloneIdentity(id)
	s.enqueueLocked()
}

// SetLoading toggles the loading flag. Clearing it before any resolution
// returns ErrUnresolved, and setting it after resolution returns
// ErrLoadingRegression; the state is unchanged in both cases.
func (s *Store) SetLoading(loading bool) error {
	s.mu.Lock()
	switch {
	case !loading && !s.resolved:
		s.mu.Unlock()
		return ErrUnresolved
	case loading && s.resolved:
		s.mu.Unlock()
		return ErrLoadingRegression
	case s.state.Loading == loading:
		s.mu.Unlock()
		return nil
	}
	s.state.Loading = loading
	s.enqueueLocked()
	return nil
}

// Resolve sets the identity and clears loading as a single transition.
func (s *Store) Resolve(id *domainauth.Identity) {
	s.mu.Lock()
	s.resolved = true
	s.state = domainauth.State{Identity: cloneIdentity(id)}
	s.enqueueLocked()
}

// Subscribe registers fn and returns a function that removes it.
// fn is not called with the current state; use Snapshot for that.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// enqueueLocked queues the current state for delivery and releases s.mu.
func (s *Store) enqueueLocked() {
	s.queue = append(s.queue, cloneState(s.state))
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		subs := slices.Clone(s.subs)
		s.mu.Unlock()
		for _, sub := range subs {
			sub.fn(cloneState(next))
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func cloneState(st domainauth.State) domainauth.State {
	return domainauth.State{Identity: cloneIdentity(st.Identity), Loading: st.Loading}
}

func cloneIdentity(id *domainauth.Identity) *domainauth.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

package session

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
)

// ErrStoreRequired indicates a guard cannot be constructed without a store.
var ErrStoreRequired = errors.New("guard store is required")

// GuardOptions configure a Guard.
type GuardOptions struct {
	Store        *Store
	Requirement  domainauth.Requirement
	Destinations domainauth.Destinations
	// OnChange is called with each new decision, never twice in a row with the same one.
	OnChange func(domainauth.Decision)
}

// Guard re-evaluates a route requirement whenever the store changes.
type Guard struct {
	store    *Store
	req      domainauth.Requirement
	dest     domainauth.Destinations
	onChange func(domainauth.Decision)

	mu      sync.Mutex
	current domainauth.Decision
	changed chan struct{}
	unsub   func()
	closed  bool
}

// NewGuard subscribes a guard to the store and evaluates the current state.
func NewGuard(opts GuardOptions) (*Guard, error) {
	if opts.Store == nil {
		return nil, ErrStoreRequired
	}
	dest := opts.Destinations
	if dest.Login == "" || dest.Landing == "" {
		def := domainauth.DefaultDestinations()
		if dest.Login == "" {
			dest.Login = def.Login
		}
		if dest.Landing == "" {
			dest.Landing = def.Landing
		}
	}

	g := &Guard{
		store:    opts.Store,
		req:      opts.Requirement,
		dest:     dest,
		onChange: opts.OnChange,
		current:  domainauth.Pending(),
		changed:  make(chan struct{}),
	}
	g.unsub = opts.Store.Subscribe(g.observe)
	g.observe(opts.Store.Snapshot())
	return g, nil
}

// Decision returns the latest decision.
func (g *Guard) Decision() domainauth.Decision {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Wait blocks until the decision is no longer pending or ctx is done.
func (g *Guard) Wait(ctx context.Context) (domainauth.Decision, error) {
	for {
		g.mu.Lock()
		cur, ch := g.current, g.changed
		g.mu.Unlock()
		if cur.Kind != domainauth.DecisionPending {
			return cur, nil
		}
		select {
		case <-ctx.Done():
			return cur, ctx.Err()
		case <-ch:
		}
	}
}

// Close unsubscribes the guard from the store.
func (g *Guard) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	unsub := g.unsub
	g.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (g *Guard) observe(st domainauth.State) {
	next := domainauth.Evaluate(st, g.req, g.dest)

	g.mu.Lock()
	if g.closed || next == g.current {
		g.mu.Unlock()
		return
	}
	g.current = next
	close(g.changed)
	g.changed = make(chan struct{})
	onChange := g.onChange
	g.mu.Unlock()

	if onChange != nil {
		onChange(next)
	}
}

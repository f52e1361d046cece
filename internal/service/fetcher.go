package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/domain/model"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/ports"
	"github.com/target/maintdesk/internal/session"
)

// FetchResult is the outcome of a role-scoped list fetch.
// Items is never nil.
type FetchResult[T any] struct {
	Items []T
	// Scope is the visibility the fetch ran with; empty when skipped.
	Scope domainauth.Scope
	// Err is the classified failure, if any. Items is empty when set.
	Err error
	// Skipped is set when no fetch was made: identity still loading, logged out,
	// or the collection is not visible to the role.
	Skipped bool
	// Stale is set when the identity changed while the fetch was in flight and
	// the response was discarded.
	Stale bool
}

// Failed reports whether the fetch ran and failed.
func (r FetchResult[T]) Failed() bool { return r.Err != nil }

// ScopedFetcherOptions groups dependencies for ScopedFetcher.
type ScopedFetcherOptions struct {
	API    ports.MaintenanceAPI // Required: backend resource endpoints
	Store  *session.Store       // Required: source of the current identity
	Logger *slog.Logger         // Optional: structured logger
}

// ScopedFetcher loads collections with the visibility of the current identity:
// admins get every record, users only their own.
type ScopedFetcher struct {
	api    ports.MaintenanceAPI
	store  *session.Store
	logger *slog.Logger
}

// NewScopedFetcher constructs a new ScopedFetcher.
func NewScopedFetcher(opts ScopedFetcherOptions) *ScopedFetcher {
	if opts.API == nil {
		panic("MaintenanceAPI is required")
	}
	if opts.Store == nil {
		panic("session store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopedFetcher{api: opts.API, store: opts.Store, logger: logger.With("component", "scoped_fetcher")}
}

// Equipment lists equipment visible to the current identity.
func (f *ScopedFetcher) Equipment(ctx context.Context) FetchResult[model.Equipment] {
	return fetchScoped(ctx, f, "equipment", f.api.ListEquipment)
}

// Tickets lists tickets visible to the current identity.
func (f *ScopedFetcher) Tickets(ctx context.Context) FetchResult[model.Ticket] {
	return fetchScoped(ctx, f, "tickets", f.api.ListTickets)
}

// SelectableEquipment lists visible equipment that can receive new tickets.
func (f *ScopedFetcher) SelectableEquipment(ctx context.Context) FetchResult[model.Equipment] {
	res := f.Equipment(ctx)
	res.Items = model.SelectableEquipment(res.Items)
	return res
}

// Teams lists maintenance teams. Teams are an admin collection on the
// backend, so for other roles the fetch is skipped.
func (f *ScopedFetcher) Teams(ctx context.Context) FetchResult[model.Team] {
	return fetchScoped(ctx, f, "teams", func(ctx context.Context, scope domainauth.Scope) ([]model.Team, error) {
		if scope != domainauth.ScopeAll {
			return nil, errNotVisible
		}
		return f.api.ListTeams(ctx)
	})
}

var errNotVisible = errors.New("collection not visible to this role")

func fetchScoped[T any](
	ctx context.Context,
	f *ScopedFetcher,
	kind string,
	list func(context.Context, domainauth.Scope) ([]T, error),
) FetchResult[T] {
	st := f.store.Snapshot()
	if st.Loading || st.Identity == nil {
		return FetchResult[T]{Items: []T{}, Skipped: true}
	}
	scope, _ := domainauth.ScopeFor(st.Identity)

	items, err := safeList(ctx, scope, list)

	if !domainauth.SameIdentity(st.Identity, f.store.Identity()) {
		f.logger.DebugContext(ctx, "discarding stale fetch", "kind", kind)
		return FetchResult[T]{Items: []T{}, Scope: scope, Stale: true}
	}
	if errors.Is(err, errNotVisible) {
		return FetchResult[T]{Items: []T{}, Skipped: true}
	}
	if err != nil {
		f.logger.WarnContext(ctx, "fetch failed", "kind", kind, "scope", scope, "error", err)
		return FetchResult[T]{Items: []T{}, Scope: scope, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return FetchResult[T]{Items: items, Scope: scope}
}

// safeList converts a panic in the backend adapter into an error.
func safeList[T any](
	ctx context.Context,
	scope domainauth.Scope,
	list func(context.Context, domainauth.Scope) ([]T, error),
) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = apperrors.Internal(fmt.Sprintf("fetch panicked: %v", r))
		}
	}()
	return list(ctx, scope)
}

package httpx

import (
	"cmp"
	"errors"
	"net/http"
	"slices"

	"github.com/target/maintdesk/internal/domain/model"
	apperrors "github.com/target/maintdesk/internal/errors"
	"github.com/target/maintdesk/internal/service"
	"golang.org/x/sync/errgroup"
)

const dashboardRecentTickets = 5

// StatusCount is one tile of the dashboard's ticket summary.
type StatusCount struct {
	Status model.TicketStatus
	Count  int
}

// Dashboard serves the landing page: a ticket summary, the most recent
// tickets and equipment and team counts, each fetched concurrently.
// GET /dashboard.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	rs, ok := h.requestSession(w, r)
	if !ok {
		return
	}

	var (
		tickets   service.FetchResult[model.Ticket]
		equipment service.FetchResult[model.Equipment]
		teams     service.FetchResult[model.Team]
	)
	// Fetch failures are carried in the results, so the group never fails.
	var g errgroup.Group
	g.Go(func() error { tickets = rs.Fetcher.Tickets(r.Context()); return nil })
	g.Go(func() error { equipment = rs.Fetcher.Equipment(r.Context()); return nil })
	g.Go(func() error { teams = rs.Fetcher.Teams(r.Context()); return nil })
	_ = g.Wait()

	builder := NewTemplateData(r, PageMeta{Title: "Dashboard", PageTitle: "Dashboard", CurrentPage: PageDashboard}).
		WithBanner(fetchBanner("tickets", tickets.Err)).
		WithBanner(fetchBanner("equipment", equipment.Err)).
		WithBanner(fetchBanner("teams", teams.Err))

	builder.
		With("StatusCounts", countByStatus(tickets.Items)).
		With("OpenTickets", countOpen(tickets.Items)).
		With("RecentTickets", ticketRows(recentTickets(tickets.Items, dashboardRecentTickets), equipment.Items, teams.Items)).
		With("EquipmentCount", len(equipment.Items)).
		With("ScrappedCount", len(equipment.Items)-len(model.SelectableEquipment(equipment.Items))).
		With("TeamCount", len(teams.Items)).
		With("ShowTeams", !teams.Skipped).
		With("Scope", tickets.Scope)

	h.renderPage(w, r, builder.Build())
}

// fetchBanner describes a failed list fetch; empty when err is nil.
func fetchBanner(kind string, err error) string {
	if err == nil {
		return ""
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Message == "" || apperrors.IsInternal(err) {
		return "Could not load " + kind + "."
	}
	return "Could not load " + kind + ": " + appErr.Message
}

func countByStatus(tickets []model.Ticket) []StatusCount {
	order := []model.TicketStatus{model.StatusNew, model.StatusInProgress, model.StatusRepaired, model.StatusScrap}
	counts := make(map[model.TicketStatus]int, len(order))
	for _, t := range tickets {
		counts[t.Status]++
	}
	out := make([]StatusCount, 0, len(order))
	for _, s := range order {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

func countOpen(tickets []model.Ticket) int {
	n := 0
	for _, t := range tickets {
		if !t.Status.Terminal() {
			n++
		}
	}
	return n
}

// recentTickets returns up to n tickets, newest first.
func recentTickets(tickets []model.Ticket, n int) []model.Ticket {
	sorted := slices.Clone(tickets)
	slices.SortStableFunc(sorted, func(a, b model.Ticket) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

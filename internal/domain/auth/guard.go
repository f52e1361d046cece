package auth

// Requirement is the minimum session state a page needs before it renders.
type Requirement int

const (
	RequireNone Requirement = iota
	RequireAuthenticated
	RequireAdmin
)

func (r Requirement) String() string {
	switch r {
	case RequireNone:
		return "NONE"
	case RequireAuthenticated:
		return "AUTHENTICATED"
	case RequireAdmin:
		return "AUTHENTICATED_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Destinations are the redirect targets used by the route guard.
type Destinations struct {
	Login   string // where unauthenticated visitors are sent
	Landing string // default page for authenticated users lacking privileges
}

// DefaultDestinations returns the built-in redirect targets.
func DefaultDestinations() Destinations {
	return Destinations{Login: "/login", Landing: "/dashboard"}
}

// DecisionKind classifies a route guard outcome.
type DecisionKind int

const (
	// DecisionPending means the session is still loading; render a placeholder.
	DecisionPending DecisionKind = iota
	// DecisionAllow means the page may render.
	DecisionAllow
	// DecisionRedirect means navigate to Decision.Target.
	DecisionRedirect
)

// Decision is the result of evaluating a route requirement against a State.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// Pending, Allow and Redirect are convenience constructors.
func Pending() Decision               { return Decision{Kind: DecisionPending} }
func Allow() Decision                 { return Decision{Kind: DecisionAllow} }
func Redirect(target string) Decision { return Decision{Kind: DecisionRedirect, Target: target} }

func (d Decision) String() string {
	switch d.Kind {
	case DecisionPending:
		return "PENDING"
	case DecisionAllow:
		return "ALLOW"
	case DecisionRedirect:
		return "REDIRECT(" + d.Target + ")"
	default:
		return "UNKNOWN"
	}
}

// Evaluate applies the route policy. Rules are checked in order and the
// first match wins:
//  1. loading: pending, never redirect
//  2. identity required but absent: redirect to login
//  3. admin required but role is not admin: redirect to landing
//  4. otherwise allow
func Evaluate(state State, req Requirement, dest Destinations) Decision {
	if state.Loading {
		return Pending()
	}
	if req == RequireNone {
		return Allow()
	}
	if state.Identity == nil {
		return Redirect(dest.Login)
	}
	if req == RequireAdmin && !state.Identity.IsAdmin() {
		return Redirect(dest.Landing)
	}
	return Allow()
}

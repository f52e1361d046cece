// Package metrics turns session gate events into StatsD series.
package metrics

import (
	"net/url"
	"strings"

	domainauth "github.com/target/maintdesk/internal/domain/auth"
	obserrors "github.com/target/maintdesk/internal/observability/errors"
	"github.com/target/maintdesk/internal/observability/statsd"
)

// Result tag values.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metric names, relative to the client prefix.
const (
	MetricGuardDecision   = "guard.decision"
	MetricLogin           = "auth.login"
	MetricBackendRequests = "backend.request"
	MetricBackendDuration = "backend.duration"
)

// Gate records guard and login outcomes. A nil Gate, or one built on a nil
// sink, records nothing.
type Gate struct {
	sink statsd.Sink
}

// NewGate returns a Gate emitting to sink.
func NewGate(sink statsd.Sink) *Gate {
	if sink == nil {
		return nil
	}
	return &Gate{sink: sink}
}

// GuardDecision counts a settled route guard decision.
func (g *Gate) GuardDecision(req domainauth.Requirement, d domainauth.Decision) {
	if g == nil {
		return
	}
	tags := map[string]string{
		"requirement": strings.ToLower(req.String()),
		"decision":    decisionTag(d.Kind),
	}
	if d.Kind == domainauth.DecisionRedirect {
		tags["target"] = targetPath(d.Target)
	}
	g.sink.Count(MetricGuardDecision, 1, tags)
}

// Login counts a login attempt. Forbidden and validation failures are
// rejected credentials; anything else is an error.
func (g *Gate) Login(err error) {
	if g == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if err != nil {
		class := obserrors.Classify(err)
		tags["result"] = ResultError
		if class == "forbidden" || class == "validation" || class == "unauthenticated" {
			tags["result"] = ResultRejected
		}
		tags["error_class"] = class
	}
	g.sink.Count(MetricLogin, 1, tags)
}

func decisionTag(k domainauth.DecisionKind) string {
	switch k {
	case domainauth.DecisionAllow:
		return "allow"
	case domainauth.DecisionRedirect:
		return "redirect"
	case domainauth.DecisionPending:
		return "pending"
	default:
		return "unknown"
	}
}

// targetPath drops the query so next= values do not explode cardinality.
func targetPath(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return u.Path
}

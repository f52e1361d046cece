package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	obserrors "github.com/target/maintdesk/internal/observability/errors"
	"github.com/target/maintdesk/internal/observability/statsd"
)

// Transport wraps next so every backend round trip is counted and timed.
// A nil sink returns next unchanged; a nil next uses http.DefaultTransport.
func Transport(next http.RoundTripper, sink statsd.Sink) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if sink == nil {
		return next
	}
	return &instrumentedTransport{next: next, sink: sink, now: time.Now}
}

type instrumentedTransport struct {
	next http.RoundTripper
	sink statsd.Sink
	now  func() time.Time
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := t.now()
	resp, err := t.next.RoundTrip(req)

	tags := map[string]string{
		"method": req.Method,
		"route":  RouteTag(req.URL.Path),
	}
	if err != nil {
		tags["status"] = "error"
		tags["error_class"] = transportErrorClass(err)
	} else {
		tags["status"] = statusClass(resp.StatusCode)
	}
	t.sink.Count(MetricBackendRequests, 1, tags)
	t.sink.Timing(MetricBackendDuration, t.now().Sub(start), tags)
	return resp, err
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "other"
	}
	return strconv.Itoa(code/100) + "xx"
}

// transportErrorClass tags raw transport failures, which carry no app code yet.
func transportErrorClass(err error) string {
	if c := obserrors.Classify(err); c != obserrors.ClassUnknown {
		return c
	}
	return "network"
}

// collections whose second path segment is a record id.
var collections = map[string]bool{"tickets": true, "equipment": true, "teams": true, "users": true}

// RouteTag collapses record ids in a backend path: /tickets/42 -> /tickets/{id}.
func RouteTag(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 && collections[parts[0]] && parts[1] != "my" && parts[1] != "me" {
		parts[1] = "{id}"
	}
	return "/" + strings.Join(parts, "/")
}

package httpx

import (
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/target/maintdesk"
	"github.com/target/maintdesk/internal/adapters/backend"
	"github.com/target/maintdesk/internal/adapters/memory"
	domainauth "github.com/target/maintdesk/internal/domain/auth"
	"github.com/target/maintdesk/internal/observability/statsd"
	"github.com/target/maintdesk/internal/service"
	"github.com/target/maintdesk/internal/session"
	"github.com/target/maintdesk/internal/testutil"
)

// testTemplates returns the embedded template tree.
func testTemplates(t *testing.T) fs.FS {
	t.Helper()
	sub, err := fs.Sub(maintdesk.TemplateFS, TemplatePathFromRoot)
	require.NoError(t, err)
	return sub
}

// requireTemplateRenderer parses the embedded templates.
func requireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: testTemplates(t)})
	require.NoError(t, err)
	return tr
}

// requestWithIdentity returns a GET request whose session already resolved to id.
// A nil id is a resolved, logged-out session.
func requestWithIdentity(t *testing.T, id *domainauth.Identity) *http.Request {
	t.Helper()
	store := session.NewStore()
	store.Resolve(id)
	rs := &service.RequestSession{
		Record: domainauth.Session{ID: "test-session"},
		Store:  store,
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return r.WithContext(SetRequestSession(r.Context(), rs))
}

// testApp is the full router in front of an in-memory backend.
type testApp struct {
	backend *testutil.DevBackend
	repo    *memory.SessionRepository
	metrics *statsd.Recorder
	server  *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	be := testutil.StartDevBackend(t)
	factory, err := backend.NewFactory(backend.Config{BaseURL: be.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	repo := memory.NewSessionRepository(time.Now)
	sessions := service.NewSessionService(service.SessionServiceOptions{
		Repo:     repo,
		Backends: factory,
	})
	rec := &statsd.Recorder{}
	router := NewRouter(RouterServices{
		Sessions:  sessions,
		IsDev:     true,
		Templates: testTemplates(t),
		Metrics:   rec,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testApp{backend: be, repo: repo, metrics: rec, server: srv}
}

// testBrowser is a cookie-keeping client that does not follow redirects.
type testBrowser struct {
	t      *testing.T
	app    *testApp
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *testBrowser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testBrowser{
		t:   t,
		app: a,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// testResponse is a response with its body already read.
type testResponse struct {
	*http.Response
	Body string
}

func (b *testBrowser) do(req *http.Request) testResponse {
	b.t.Helper()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html")
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return testResponse{Response: resp, Body: string(body)}
}

func (b *testBrowser) get(path string, header ...string) testResponse {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.app.server.URL+path, nil)
	require.NoError(b.t, err)
	setHeaders(req, header)
	return b.do(req)
}

// post submits form with the browser's CSRF token.
func (b *testBrowser) post(path string, form url.Values, header ...string) testResponse {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get(DefaultCSRFCookieName) == "" {
		form.Set(DefaultCSRFCookieName, b.csrfToken())
	}
	req, err := http.NewRequest(http.MethodPost, b.app.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setHeaders(req, header)
	return b.do(req)
}

// csrfToken returns the CSRF cookie, fetching the login page first when missing.
func (b *testBrowser) csrfToken() string {
	b.t.Helper()
	if v := b.cookie(DefaultCSRFCookieName); v != "" {
		return v
	}
	b.get("/login")
	v := b.cookie(DefaultCSRFCookieName)
	require.NotEmpty(b.t, v, "csrf cookie not issued")
	return v
}

func (b *testBrowser) cookie(name string) string {
	u, err := url.Parse(b.app.server.URL)
	require.NoError(b.t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// login signs in and asserts the redirect to the landing page.
func (b *testBrowser) login(email, password string) {
	b.t.Helper()
	resp := b.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode, resp.Body)
	require.Equal(b.t, "/dashboard", resp.Header.Get("Location"))
}

func setHeaders(req *http.Request, kv []string) {
	for i := 0; i+1 < len(kv); i += 2 {
		req.Header.Set(kv[i], kv[i+1])
	}
}

// htmxHeaders marks a request as coming from htmx.
func htmxHeaders() []string { return []string{"Hx-Request", "true"} }

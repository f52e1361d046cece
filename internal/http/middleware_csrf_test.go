package httpx

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testCSRFToken = "test-csrf-token"

func csrfTestHandler(cfg CSRFConfig) http.Handler {
	return CSRFProtection(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCSRFProtection_GetRequestsAllowed(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	resp := w.Result()
	defer resp.Body.Close()
	c := findCookie(resp, DefaultCSRFCookieName)
	if c == nil {
		t.Fatal("CSRF cookie not set")
	}
	if c.Value == "" {
		t.Error("CSRF token is empty")
	}
	if c.HttpOnly {
		t.Error("CSRF cookie must be readable by scripts")
	}
	if c.Secure {
		t.Error("insecure mode should not mark the cookie Secure over plain HTTP")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("expected SameSite=Strict, got %v", c.SameSite)
	}
}

func TestCSRFProtection_PostWithoutTokenFails(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "form expired") {
		t.Errorf("browser should get a readable message, got %q", w.Body.String())
	}
}

func TestCSRFProtection_PostWithoutCookieFails(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
}

func TestCSRFProtection_PostWithValidHeaderToken(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodPost, "/tickets", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	req.Header.Set("Hx-Request", "true")
	req.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("expected success body, got %q", w.Body.String())
	}
}

func TestCSRFProtection_PostWithValidFormToken(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	form := url.Values{DefaultCSRFCookieName: {testCSRFToken}, "subject": {"Oil leak"}}
	req := httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestCSRFProtection_PostWithMismatchedToken(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	req := httptest.NewRequest(http.MethodPost, "/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	req.Header.Set(DefaultCSRFHeaderName, "other-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "csrf_failed") {
		t.Errorf("API clients should get a JSON error code, got %q", w.Body.String())
	}
}

func TestCSRFProtection_SafeMethodsExempt(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/dashboard", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Errorf("%s: expected status 200, got %d", method, w.Code)
			}
		})
	}
}

func TestCSRFProtection_UnsafeMethodsChecked(t *testing.T) {
	handler := csrfTestHandler(CSRFConfig{Insecure: true})

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/tickets/t-1", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != http.StatusForbidden {
				t.Errorf("%s: expected status 403, got %d", method, w.Code)
			}
		})
	}
}

func TestCSRFProtection_TokenInContext(t *testing.T) {
	var seen string
	handler := CSRFProtection(CSRFConfig{Insecure: true})(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetCSRFToken(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != testCSRFToken {
		t.Errorf("expected token %q in context, got %q", testCSRFToken, seen)
	}
}

func TestCSRFProtection_CookieAttributes(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CSRFConfig
		tls        bool
		forwarded  string
		wantSecure bool
	}{
		{name: "secure by default", cfg: CSRFConfig{}, wantSecure: true},
		{name: "insecure over http", cfg: CSRFConfig{Insecure: true}, wantSecure: false},
		{name: "insecure but tls", cfg: CSRFConfig{Insecure: true}, tls: true, wantSecure: true},
		{name: "insecure behind https proxy", cfg: CSRFConfig{Insecure: true}, forwarded: "https", wantSecure: true},
		{name: "forwarded list", cfg: CSRFConfig{Insecure: true}, forwarded: "http, HTTPS", wantSecure: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			w := httptest.NewRecorder()
			csrfTestHandler(tt.cfg).ServeHTTP(w, req)

			resp := w.Result()
			defer resp.Body.Close()
			c := findCookie(resp, DefaultCSRFCookieName)
			if c == nil {
				t.Fatal("CSRF cookie not set")
			}
			if c.Secure != tt.wantSecure {
				t.Errorf("Secure = %v, want %v", c.Secure, tt.wantSecure)
			}
		})
	}
}

func TestCSRFProtection_CookieDomain(t *testing.T) {
	w := httptest.NewRecorder()
	csrfTestHandler(CSRFConfig{CookieDomain: "maint.example.com"}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))

	resp := w.Result()
	defer resp.Body.Close()
	c := findCookie(resp, DefaultCSRFCookieName)
	if c == nil || c.Domain != "maint.example.com" {
		t.Fatalf("expected cookie domain maint.example.com, got %+v", c)
	}
}

func TestCSRFProtection_CookieNotSetWhenExists(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	w := httptest.NewRecorder()
	csrfTestHandler(CSRFConfig{Insecure: true}).ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	if c := findCookie(resp, DefaultCSRFCookieName); c != nil {
		t.Errorf("existing token should be reused, got new cookie %q", c.Value)
	}
}

func TestCSRFProtection_ContentTypeFiltering(t *testing.T) {
	form := url.Values{DefaultCSRFCookieName: {testCSRFToken}}.Encode()
	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{name: "urlencoded", contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusOK},
		{name: "urlencoded with charset", contentType: "application/x-www-form-urlencoded; charset=utf-8", wantStatus: http.StatusOK},
		{name: "json body is not parsed", contentType: "application/json", wantStatus: http.StatusForbidden},
		{name: "plain text is not parsed", contentType: "text/plain", wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/teams", strings.NewReader(form))
			req.Header.Set("Content-Type", tt.contentType)
			req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
			w := httptest.NewRecorder()
			csrfTestHandler(CSRFConfig{Insecure: true}).ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestGetCSRFToken_NoToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token := GetCSRFToken(req); token != "" {
		t.Errorf("expected empty token, got %q", token)
	}
}

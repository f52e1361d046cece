package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	r.Header.Set("Hx-Request", "true")
	if !IsHTMX(r) || !WantsPartial(r) {
		t.Fatal("expected htmx request to want a partial")
	}

	r2 := httptest.NewRequest(http.MethodGet, "/tickets", nil)
	if IsHTMX(r2) || WantsPartial(r2) {
		t.Fatal("expected defaults to false")
	}
}

func TestHTMXResponse_Redirect(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "login", url: "/login?next=%2Ftickets"},
		{name: "landing", url: "/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HTMX(w).Redirect(tt.url)

			if got := w.Header().Get("Hx-Redirect"); got != tt.url {
				t.Errorf("Hx-Redirect = %q, want %q", got, tt.url)
			}
			if w.Code != http.StatusNoContent {
				t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
			}
		})
	}
}

func TestHTMXResponse_Trigger(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		payload any
		want    string
	}{
		{name: "nil payload", event: "refresh", want: `{"refresh":true}`},
		{name: "string payload", event: "notify", payload: "Saved", want: `{"notify":"Saved"}`},
		{name: "map payload", event: "ticket", payload: map[string]string{"status": "NEW"}, want: `{"ticket":{"status":"NEW"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HTMX(w).Trigger(tt.event, tt.payload)

			var got, want any
			if err := json.Unmarshal([]byte(w.Header().Get("Hx-Trigger")), &got); err != nil {
				t.Fatalf("unmarshal trigger: %v", err)
			}
			_ = json.Unmarshal([]byte(tt.want), &want)
			gb, _ := json.Marshal(got)
			wb, _ := json.Marshal(want)
			if string(gb) != string(wb) {
				t.Errorf("Hx-Trigger = %s, want %s", gb, wb)
			}
		})
	}
}

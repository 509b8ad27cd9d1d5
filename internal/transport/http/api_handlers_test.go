package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/parlor-chat/parlor/internal/core"
)

func postRegister(t *testing.T, ts *httptest.Server, body string) (*http.Response, ErrorResponse) {
	t.Helper()

	resp, err := ts.Client().Post(ts.URL+"/api/register", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	defer resp.Body.Close()

	var errResp ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	return resp, errResp
}

func TestRegisterValidation(t *testing.T) {
	ts, _ := startTestServer(t, core.Options{})

	tests := []struct {
		name       string
		body       string
		wantCode   int
		wantStatus string
	}{
		{name: "valid name", body: `{"name":"alice"}`, wantCode: http.StatusCreated, wantStatus: "ok"},
		{name: "duplicate name", body: `{"name":"alice"}`, wantCode: http.StatusConflict, wantStatus: "name_taken"},
		{name: "empty name", body: `{"name":""}`, wantCode: http.StatusBadRequest, wantStatus: "invalid_name"},
		{name: "missing name", body: `{}`, wantCode: http.StatusBadRequest, wantStatus: "invalid_name"},
		{name: "invalid json", body: `{`, wantCode: http.StatusBadRequest, wantStatus: "invalid_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, errResp := postRegister(t, ts, tt.body)
			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if errResp.Status != tt.wantStatus {
				t.Fatalf("expected status %q, got %q", tt.wantStatus, errResp.Status)
			}
		})
	}
}

func TestListUsersJournal(t *testing.T) {
	ts, _ := startTestServer(t, core.Options{})

	for _, name := range []string{"alice", "bob"} {
		resp, _ := postRegister(t, ts, `{"name":"`+name+`"}`)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("register %s: status %d", name, resp.StatusCode)
		}
	}

	resp, err := ts.Client().Get(ts.URL + "/api/users")
	if err != nil {
		t.Fatalf("list users request: %v", err)
	}
	defer resp.Body.Close()

	var users []UserPayload
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 || users[0].Name != "alice" || users[1].Name != "bob" {
		t.Fatalf("unexpected journal: %+v", users)
	}
}

func TestPresenceEndpoint(t *testing.T) {
	ts, hub := startTestServer(t, core.Options{})

	if _, err := hub.Register(context.Background(), "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := ts.Client().Get(ts.URL + "/api/presence")
	if err != nil {
		t.Fatalf("presence request: %v", err)
	}
	defer resp.Body.Close()

	var users []UserPayload
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode presence: %v", err)
	}
	if len(users) != 1 || users[0].Name != "alice" {
		t.Fatalf("unexpected presence: %+v", users)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := startTestServer(t, core.Options{})

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/config"
	"github.com/parlor-chat/parlor/internal/core"
	"github.com/parlor-chat/parlor/internal/store"
	"github.com/parlor-chat/parlor/internal/store/sqlite"
)

func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

func startTestServer(t *testing.T, opts core.Options) (*httptest.Server, *core.Hub) {
	t.Helper()

	st := createTestStore(t)
	disabledLogger := zerolog.Nop()

	hub := core.NewHub(st, &disabledLogger, opts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second

	server := NewServer(hub, st, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })

	return conn
}

// readHistory reads the next frame and requires it to be a history event.
func readHistory(t *testing.T, ctx context.Context, conn *websocket.Conn) []json.RawMessage {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read history frame: %v", err)
	}

	var history struct {
		Type string            `json:"type"`
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &history); err != nil {
		t.Fatalf("unmarshal history frame %s: %v", data, err)
	}
	if history.Type != "history" {
		t.Fatalf("expected history frame first, got: %s", data)
	}
	return history.Data
}

type presenceUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// awaitPresence reads frames until a bare presence array with the wanted
// names arrives.
func awaitPresence(t *testing.T, ctx context.Context, conn *websocket.Conn, want []string) []presenceUser {
	t.Helper()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read frame waiting for presence %v: %v", want, err)
		}

		var users []presenceUser
		if err := json.Unmarshal(data, &users); err != nil {
			continue // not a presence array
		}
		if len(users) != len(want) {
			continue
		}
		match := true
		for i := range users {
			if users[i].Name != want[i] {
				match = false
				break
			}
		}
		if match {
			return users
		}
	}
}

func sendJSON(t *testing.T, ctx context.Context, conn *websocket.Conn, payload string) {
	t.Helper()

	if err := conn.Write(ctx, websocket.MessageText, []byte(payload)); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

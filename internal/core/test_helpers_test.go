package core

import (
	"context"
	"testing"
	"time"

	"github.com/parlor-chat/parlor/internal/store"
	"github.com/parlor-chat/parlor/internal/store/sqlite"
)

func startHub(t *testing.T, st store.Store, opts Options) *Hub {
	t.Helper()

	hub := NewHub(st, nil, opts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// mustEvent waits for the next event of the given kind, discarding others.
func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// expectNoEvent fails if an event of the given kind arrives within the window.
func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, window time.Duration) {
	t.Helper()

	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v: %+v", kind, ev)
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func presenceNames(ev *Event) []string {
	names := make([]string, 0, len(ev.Participants))
	for _, p := range ev.Participants {
		names = append(names, p.Name)
	}
	return names
}

func sameNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// mustPresence waits for a presence event matching the wanted name list.
func mustPresence(t *testing.T, ch <-chan *Event, want []string) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil || ev.Kind != EventPresence {
				continue
			}
			if sameNames(presenceNames(ev), want) {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected presence snapshot %v not received", want)
	return nil
}

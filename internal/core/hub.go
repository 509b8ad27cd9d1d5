package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/store"
)

// Options tunes hub behavior. Zero values fall back to defaults.
type Options struct {
	// StaleAfter is how long a participant may stay silent before a sweep
	// evicts it.
	StaleAfter time.Duration
	// SweepInterval is how often the reaper checks for stale participants.
	SweepInterval time.Duration
}

const (
	defaultStaleAfter    = 30 * time.Second
	defaultSweepInterval = 5 * time.Second
)

func (o *Options) applyDefaults() {
	if o.StaleAfter <= 0 {
		o.StaleAfter = defaultStaleAfter
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = defaultSweepInterval
	}
}

// presenceEntry tracks one current participant.
type presenceEntry struct {
	participant Participant
	lastSeen    time.Time
	// client is the connection bound at join time, nil for participants
	// registered over HTTP that have not joined yet. Set once.
	client *Client
}

type envelope struct {
	client *Client
	cmd    Command
}

type registration struct {
	name  string
	reply chan registerResult
}

type registerResult struct {
	participant Participant
	err         error
}

// Hub owns the presence table, the open channel set and the history log
// access. All state is confined to the Run goroutine; connections and the
// HTTP layer talk to it over channels, so every mutation is serialized and
// snapshots are never torn. One reaper runs per hub, not per connection.
type Hub struct {
	log   *zerolog.Logger
	store store.Store
	opts  Options

	register      chan *Client
	unregister    chan *Client
	commands      chan envelope
	registrations chan registration
	snapshots     chan chan []Participant
	done          chan struct{}

	// Owned by Run.
	sessions map[*Client]struct{}
	entries  map[string]*presenceEntry
	order    []string
}

// NewHub constructs a hub. The store may be nil, in which case history is
// always empty and registrations are not journaled (used by tests).
func NewHub(st store.Store, logger *zerolog.Logger, opts Options) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	opts.applyDefaults()

	return &Hub{
		log:           logger,
		store:         st,
		opts:          opts,
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		commands:      make(chan envelope, 256),
		registrations: make(chan registration),
		snapshots:     make(chan chan []Participant),
		done:          make(chan struct{}),
		sessions:      make(map[*Client]struct{}),
		entries:       make(map[string]*presenceEntry),
	}
}

// Run processes hub traffic until the context is canceled. Call it exactly
// once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.handleConnect(ctx, c)
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case env := <-h.commands:
			h.handleCommand(ctx, env.client, env.cmd)
		case reg := <-h.registrations:
			reg.reply <- h.handleRegistration(ctx, reg.name)
		case reply := <-h.snapshots:
			reply <- h.presenceSnapshot()
		case <-ticker.C:
			h.sweep()
		}
	}
}

// RegisterClient adds a new connection to the channel set. The client's
// first event is always the current history snapshot.
func (h *Hub) RegisterClient(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// UnregisterClient removes a connection; equivalent to an exit for the
// identity the connection joined as, if any.
func (h *Hub) UnregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Dispatch submits one inbound command on behalf of a connection. Commands
// from a single connection are processed in arrival order.
func (h *Hub) Dispatch(c *Client, cmd Command) {
	select {
	case h.commands <- envelope{client: c, cmd: cmd}:
	case <-h.done:
	}
}

// Register reserves a display name. It fails with ErrNameTaken while a
// current participant holds the name, and with ErrEmptyName for blank input.
func (h *Hub) Register(ctx context.Context, name string) (Participant, error) {
	if name == "" {
		return Participant{}, ErrEmptyName
	}

	reply := make(chan registerResult, 1)
	select {
	case h.registrations <- registration{name: name, reply: reply}:
	case <-h.done:
		return Participant{}, ErrHubStopped
	case <-ctx.Done():
		return Participant{}, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.participant, res.err
	case <-ctx.Done():
		return Participant{}, ctx.Err()
	}
}

// Presence returns the current ordered participant list.
func (h *Hub) Presence(ctx context.Context) ([]Participant, error) {
	reply := make(chan []Participant, 1)
	select {
	case h.snapshots <- reply:
	case <-h.done:
		return nil, ErrHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) handleConnect(ctx context.Context, c *Client) {
	// History goes out before the client can observe any later append;
	// both happen on this goroutine, so the snapshot is consistent.
	h.deliver(c, &Event{Kind: EventHistory, Messages: h.historySnapshot(ctx)})
	h.sessions[c] = struct{}{}
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.sessions)).Msg("client connected")
}

func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.sessions[c]; !ok {
		return
	}
	delete(h.sessions, c)
	close(c.Events)
	h.log.Debug().Str("client_id", c.ID).Int("clients", len(h.sessions)).Msg("client disconnected")

	if c.identity == "" {
		return
	}
	if h.removeEntry(c.identity) {
		h.broadcast(&Event{Kind: EventPresence, Participants: h.presenceSnapshot()})
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd Command) {
	switch cmd.Kind {
	case CommandPing:
		// A late ping for an evicted participant is a silent no-op.
		if entry, ok := h.entries[cmd.Name]; ok {
			entry.lastSeen = time.Now()
		}
	case CommandJoin:
		h.handleJoin(ctx, c, cmd.Name)
	case CommandExit:
		if h.removeEntry(cmd.Name) {
			h.broadcast(&Event{Kind: EventPresence, Participants: h.presenceSnapshot()})
		}
	case CommandSend:
		h.handleSend(ctx, cmd.Frame)
	case CommandClear:
		h.handleClear(ctx)
	}
}

func (h *Hub) handleJoin(ctx context.Context, c *Client, name string) {
	entry, ok := h.entries[name]
	if !ok {
		entry = &presenceEntry{
			participant: Participant{ID: uuid.NewString(), Name: name},
		}
		h.entries[name] = entry
		h.order = append(h.order, name)
		h.journal(ctx, entry.participant)
	}
	entry.lastSeen = time.Now()
	if entry.client == nil {
		entry.client = c
	}
	if c != nil {
		c.identity = name
	}

	h.log.Info().Str("user", name).Msg("participant joined")
	h.broadcast(&Event{Kind: EventPresence, Participants: h.presenceSnapshot()})
}

func (h *Hub) handleSend(ctx context.Context, frame Frame) {
	if h.store != nil {
		msg := &store.Message{Payload: frame.Data, Binary: frame.Binary}
		if err := h.store.SaveMessage(ctx, msg); err != nil {
			h.log.Error().Err(err).Msg("failed to append message to history")
		}
	}
	h.broadcast(&Event{Kind: EventRelay, Frame: frame})
}

func (h *Hub) handleClear(ctx context.Context) {
	if h.store != nil {
		if err := h.store.ClearMessages(ctx); err != nil {
			h.log.Error().Err(err).Msg("failed to clear history")
			return
		}
	}
	h.log.Info().Msg("history cleared")
	h.broadcast(&Event{Kind: EventHistory, Messages: []json.RawMessage{}})
}

func (h *Hub) handleRegistration(ctx context.Context, name string) registerResult {
	if _, exists := h.entries[name]; exists {
		return registerResult{err: ErrNameTaken}
	}

	entry := &presenceEntry{
		participant: Participant{ID: uuid.NewString(), Name: name},
		lastSeen:    time.Now(),
	}
	h.entries[name] = entry
	h.order = append(h.order, name)
	h.journal(ctx, entry.participant)

	h.log.Info().Str("user", name).Str("id", entry.participant.ID).Msg("name registered")
	return registerResult{participant: entry.participant}
}

// sweep evicts participants whose last-seen timestamp exceeds the staleness
// threshold. Evictions are batched into one presence broadcast per sweep.
func (h *Hub) sweep() {
	cutoff := time.Now().Add(-h.opts.StaleAfter)

	var evicted []string
	for _, name := range h.order {
		if h.entries[name].lastSeen.Before(cutoff) {
			evicted = append(evicted, name)
		}
	}
	if len(evicted) == 0 {
		return
	}

	for _, name := range evicted {
		h.removeEntry(name)
		h.log.Info().Str("user", name).Msg("participant evicted")
	}
	h.broadcast(&Event{Kind: EventPresence, Participants: h.presenceSnapshot()})
}

func (h *Hub) removeEntry(name string) bool {
	if _, ok := h.entries[name]; !ok {
		return false
	}
	delete(h.entries, name)
	for i, n := range h.order {
		if n == name {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

func (h *Hub) presenceSnapshot() []Participant {
	snapshot := make([]Participant, 0, len(h.order))
	for _, name := range h.order {
		snapshot = append(snapshot, h.entries[name].participant)
	}
	return snapshot
}

func (h *Hub) historySnapshot(ctx context.Context) []json.RawMessage {
	payloads := make([]json.RawMessage, 0)
	if h.store == nil {
		return payloads
	}

	messages, err := h.store.ListMessages(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load history")
		return payloads
	}
	for _, m := range messages {
		payloads = append(payloads, json.RawMessage(m.Payload))
	}
	return payloads
}

func (h *Hub) journal(ctx context.Context, p Participant) {
	if h.store == nil {
		return
	}
	if err := h.store.SaveUser(ctx, &store.User{ID: p.ID, Name: p.Name}); err != nil {
		h.log.Warn().Err(err).Str("user", p.Name).Msg("failed to journal registration")
	}
}

func (h *Hub) broadcast(ev *Event) {
	for c := range h.sessions {
		h.deliver(c, ev)
	}
}

// deliver enqueues without blocking: a slow consumer only loses its own
// events, never stalls the hub.
func (h *Hub) deliver(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		h.log.Warn().Str("client_id", c.ID).Msg("client buffer full, dropping event")
	}
}

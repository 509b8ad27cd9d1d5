package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/core"
)

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub    *core.Hub
	buffer int
	log    *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. buffer sizes each client's
// event queue; zero picks the default.
func NewWSHandler(hub *core.Hub, buffer int, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, buffer: buffer, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	client := core.NewClient(uuid.NewString(), h.buffer)
	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		cmd, err := inboundToCommand(typ, data)
		if err != nil {
			// A malformed frame fails only itself; the connection stays open.
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("dropping malformed inbound frame")
			continue
		}
		if cmd == nil {
			// Unrecognized event kind, ignored.
			continue
		}

		h.hub.Dispatch(client, *cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			typ, data, err := outboundFromEvent(event)
			if err != nil {
				h.log.Error().Err(err).Str("client_id", client.ID).Msg("encode ws event")
				continue
			}
			if err := conn.Write(ctx, typ, data); err != nil {
				h.log.Warn().Err(err).Str("client_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

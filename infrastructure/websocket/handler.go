// Package websocket exposes the session over a plain WebSocket carrying JSON frames.
package websocket

import (
	"callsign-relay/domain"
	"callsign-relay/infrastructure/wire"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultReadTimeout = 60 * time.Second
	readLimit          = 1 << 16
)

// Handler upgrades HTTP connections and processes frames until the client disconnects.
type Handler struct {
	log        *slog.Logger
	gateway    *wire.Gateway
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, gateway *wire.Gateway, bufferSize int) *Handler {
	return &Handler{
		log:     log,
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response
		h.log.Debug("WebSocket upgrade failed", "error", err)
		return
	}

	conn := NewConnection(ws, h.bufferSize)
	id := domain.ConnectionID(conn.ID)
	address := wire.NetworkAddress(r.RemoteAddr)
	conn.Start()
	sink := NewSink(conn)
	h.gateway.Open(id, sink)
	h.log.Debug("WebSocket client connected", "connection_id", id, "address", address)
	defer func() {
		h.gateway.Close(id)
		conn.Close(websocket.CloseNormalClosure, "session closed")
		h.log.Debug("WebSocket client disconnected", "connection_id", id)
	}()

	ws.SetReadLimit(readLimit)
	_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				h.log.Debug("WebSocket read failed", "connection_id", id, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

		var frame wire.Frame
		if err = json.Unmarshal(data, &frame); err != nil {
			h.log.Debug("Malformed frame dropped", "connection_id", id, "error", err)
			continue
		}

		if frame.Ack == nil || !wire.ExpectsAck(frame.Event) {
			h.gateway.Submit(r.Context(), id, address, frame.Event, frame.Data)
			continue
		}
		if err = h.answer(r.Context(), sink, id, address, frame); err != nil {
			return
		}
	}
}

// answer submits a frame awaiting an ack and writes the ack ahead of
// any event the session emitted in the meantime.
func (h *Handler) answer(ctx context.Context, sink *Sink, id domain.ConnectionID, address string, frame wire.Frame) error {
	sink.Hold()
	ack, _ := h.gateway.Submit(ctx, id, address, frame.Event, frame.Data)
	payload, err := wire.EncodeAck(*frame.Ack, ack)
	if err != nil {
		h.log.Warn("Ack not encoded", "connection_id", id, "error", err)
		payload = nil
	}
	return sink.Release(payload)
}

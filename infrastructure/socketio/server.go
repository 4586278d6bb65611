// Package socketio exposes the session over Socket.IO, with the event names
// and ack callbacks the browser client uses.
package socketio

import (
	"callsign-relay/domain"
	"callsign-relay/infrastructure/wire"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"
)

const namespace = "/"

// Server adapts Socket.IO connections to the gateway.
type Server struct {
	log     *slog.Logger
	gateway *wire.Gateway
	server  *socketio.Server
}

func NewServer(log *slog.Logger, gateway *wire.Gateway) *Server {
	s := &Server{
		log:     log,
		gateway: gateway,
		server: socketio.NewServer(&engineio.Options{
			Transports: []transport.Transport{
				polling.Default,
				websocket.Default,
			},
		}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.server.OnConnect(namespace, func(conn socketio.Conn) error {
		s.log.Debug("Socket.IO client connected", "connection_id", conn.ID())
		s.gateway.Open(domain.ConnectionID(conn.ID()), NewSink(conn))
		return nil
	})

	s.server.OnError(namespace, func(conn socketio.Conn, err error) {
		if conn == nil {
			s.log.Warn("Socket.IO error", "error", err)
			return
		}
		s.log.Warn("Socket.IO error", "connection_id", conn.ID(), "error", err)
	})

	s.server.OnDisconnect(namespace, func(conn socketio.Conn, reason string) {
		s.log.Debug("Socket.IO client disconnected", "connection_id", conn.ID(), "reason", reason)
		s.gateway.Close(domain.ConnectionID(conn.ID()))
	})

	for _, event := range []string{wire.Register, wire.BecomeAdmin} {
		s.server.OnEvent(namespace, event, s.acknowledged(event))
	}
	s.server.OnEvent(namespace, wire.LeaveAdmin, func(conn socketio.Conn) {
		s.submit(conn, wire.LeaveAdmin, nil)
	})
	for _, event := range []string{
		wire.Chat, wire.AdminBroadcast, wire.AdminDM,
		wire.AdminMuteUser, wire.AdminUnmuteUser, wire.AdminLogoutUser,
	} {
		s.server.OnEvent(namespace, event, s.unacknowledged(event))
	}
}

// acknowledged handlers return the ack, go-socket.io sends it to the client callback.
func (s *Server) acknowledged(event string) func(conn socketio.Conn, data json.RawMessage) wire.Ack {
	return func(conn socketio.Conn, data json.RawMessage) wire.Ack {
		ack, _ := s.submit(conn, event, data)
		return ack
	}
}

func (s *Server) unacknowledged(event string) func(conn socketio.Conn, data json.RawMessage) {
	return func(conn socketio.Conn, data json.RawMessage) {
		s.submit(conn, event, data)
	}
}

func (s *Server) submit(conn socketio.Conn, event string, data json.RawMessage) (wire.Ack, bool) {
	address := ""
	if addr := conn.RemoteAddr(); addr != nil {
		address = wire.NetworkAddress(addr.String())
	}
	return s.gateway.Submit(context.Background(), domain.ConnectionID(conn.ID()), address, event, data)
}

// Serve runs the engine.io loop until Close.
func (s *Server) Serve() error {
	return s.server.Serve()
}

func (s *Server) Close() error {
	return s.server.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

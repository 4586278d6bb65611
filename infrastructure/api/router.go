// Package api mounts the transports, the health check and the static client on one router.
package api

import (
	"callsign-relay/observability"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// StatsProvider reads the resource figures of the process.
type StatsProvider interface {
	Stats() (observability.ProcessStats, error)
}

// ConnectionCounter counts the live connections of every transport.
type ConnectionCounter interface {
	ConnectionCount() int
}

type HealthCheckResponse struct {
	Alive       bool `json:"alive"`
	Connections int  `json:"connections"`
	observability.ProcessStats
}

type Routes struct {
	SocketIO  http.Handler
	WebSocket http.Handler
	StaticDir string
}

// NewRouter creates a mux router and all the routes.
func NewRouter(log *slog.Logger, routes Routes, counter ConnectionCounter, stats StatsProvider) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler(log, counter, stats)).Methods(http.MethodGet)
	if routes.SocketIO != nil {
		r.PathPrefix("/socket.io/").Handler(routes.SocketIO)
	}
	if routes.WebSocket != nil {
		r.Handle("/ws", routes.WebSocket)
	}
	if routes.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(routes.StaticDir)))
	}
	return r
}

func healthCheckHandler(log *slog.Logger, counter ConnectionCounter, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthCheckResponse{Alive: true, Connections: counter.ConnectionCount()}
		if stats != nil {
			processStats, err := stats.Stats()
			if err != nil {
				log.Warn("Failed to collect process stats", "error", err)
			}
			response.ProcessStats = processStats
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		b, _ := json.Marshal(response)
		_, _ = io.WriteString(w, string(b))
	}
}

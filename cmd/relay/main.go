package main

import (
	"callsign-relay/auth"
	"callsign-relay/domain"
	"callsign-relay/infrastructure/api"
	"callsign-relay/infrastructure/socketio"
	"callsign-relay/infrastructure/websocket"
	"callsign-relay/infrastructure/wire"
	"callsign-relay/internal"
	"callsign-relay/moderation"
	"callsign-relay/observability"
	"callsign-relay/repositories"
	"callsign-relay/runtime"
	"callsign-relay/runtime/workers"
	"callsign-relay/session"
	"callsign-relay/sink"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	secret, err := auth.NewModeratorSecret(config.AdminPassword, config.AdminPasswordHash)
	if err != nil {
		return fmt.Errorf("moderator secret: %w", err)
	}

	// 2. Journal (BadgerDB, in memory unless a path is given)
	db, err := openJournal(config.JournalPath)
	if err != nil {
		return fmt.Errorf("journal opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing journal...")
		_ = db.Close()
	}()

	// 3. Session state
	clock := domain.SystemClock{}
	reserved, err := moderation.NewReservedMatcher(domain.ReservedToken)
	if err != nil {
		return err
	}
	protocol := session.NewProtocol(log, session.NewRegistry(reserved, clock),
		moderation.NewMuteLedger(clock), clock)

	// 4. Supervision & Orchestration
	orchestrator := runtime.NewOrchestrator(log, protocol,
		workers.NewSupervisor(log, config.RestartInterval), runtime.NewRegistry(),
		config.CommandBufferSize, config.EventBufferSize, config.SinkTimeout)
	orchestrator.Add(sink.NewJournalSink(repositories.NewJournalRepository(db, log, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	orchestrator.Start(ctx)

	// 5. Transports
	decoder, err := wire.NewDecoder(config.MaxTextLength)
	if err != nil {
		return err
	}
	gateway := wire.NewGateway(log, orchestrator, decoder, secret, config.AckTimeout)
	socketServer := socketio.NewServer(log, gateway)

	var stats api.StatsProvider
	if probe, err := observability.NewSelfProbe(); err != nil {
		log.Warn("Process stats unavailable", "error", err)
	} else {
		stats = probe
	}

	server := &http.Server{
		Addr: config.Address(),
		Handler: api.NewRouter(log, api.Routes{
			SocketIO:  socketServer,
			WebSocket: websocket.NewHandler(log, gateway, config.ConnectionBufferSize),
			StaticDir: config.StaticDir,
		}, orchestrator, stats),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 2)
	go func() {
		if err := socketServer.Serve(); err != nil {
			errChan <- fmt.Errorf("socket.io server error: %w", err)
		}
	}()
	go func() {
		log.Info("SERVER RUNNING", "address", server.Addr, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case serveErr = <-errChan:
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	_ = socketServer.Close()
	orchestrator.Stop()
	log.Info("Program stopped cleanly")
	return serveErr
}

func openJournal(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		options = options.WithInMemory(true)
	}
	return badger.Open(options)
}

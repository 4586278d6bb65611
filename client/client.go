package main

import (
	"bufio"
	"callsign-relay/infrastructure/wire"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"RELAY_URL" default:"ws://localhost:3000/ws"`
	Callsign  string `envconfig:"RELAY_CALLSIGN" required:"true"`
	Name      string `envconfig:"RELAY_NAME" required:"true"`
	Colours   bool   `envconfig:"RELAY_COLOURS" default:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run registers on the relay, then forwards typed lines and prints notifications
// until the user quits, the server logs the client out or the connection drops.
func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		return exitRuntime, fmt.Errorf("could not connect to %s: %w", config.ServerURL, err)
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}()

	frames := make(chan wire.Frame)
	readErr := make(chan error, 1)
	go readLoop(conn, frames, readErr)

	lines := make(chan string)
	go scanLines(lines)

	s := &station{conn: conn, log: log, pending: make(map[int]string)}
	if err = s.send(Request{Event: wire.Register, Data: wire.RegisterPayload{
		Callsign: config.Callsign, Name: config.Name,
	}}); err != nil {
		return exitRuntime, err
	}

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case err = <-readErr:
			if ctx.Err() != nil {
				return exitOK, nil
			}
			return exitRuntime, fmt.Errorf("connection lost: %w", err)
		case frame := <-frames:
			done, err := s.receive(frame, config.Colours)
			if done || err != nil {
				return exitCode(err), err
			}
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			request, err := ParseLine(line)
			if errors.Is(err, errQuit) {
				return exitOK, nil
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err = s.send(request); err != nil {
				return exitRuntime, err
			}
		}
	}
}

// station owns the write side of the connection. Only the run loop uses it.
type station struct {
	conn    *websocket.Conn
	log     *slog.Logger
	nextAck int
	pending map[int]string
}

func (s *station) send(request Request) error {
	frame := wire.Frame{Event: request.Event}
	if request.Data != nil {
		data, err := json.Marshal(request.Data)
		if err != nil {
			return err
		}
		frame.Data = data
	}
	if wire.ExpectsAck(request.Event) {
		s.nextAck++
		id := s.nextAck
		frame.Ack = &id
		s.pending[id] = request.Event
	}
	s.log.Debug("Sending frame", "event", frame.Event)
	return s.conn.WriteJSON(frame)
}

// receive prints a frame. done is true once the session is over for this client.
func (s *station) receive(frame wire.Frame, colours bool) (done bool, err error) {
	if frame.Event == wire.AckEvent {
		return false, s.acknowledged(frame)
	}
	if line, ok := Render(frame, colours); ok {
		fmt.Println(line)
	}
	return frame.Event == "forceLogout", nil
}

func (s *station) acknowledged(frame wire.Frame) error {
	if frame.Ack == nil {
		return nil
	}
	event, ok := s.pending[*frame.Ack]
	if !ok {
		return nil
	}
	delete(s.pending, *frame.Ack)

	var ack wire.Ack
	if err := json.Unmarshal(frame.Data, &ack); err != nil {
		return err
	}
	switch {
	case ack.Ok && event == wire.BecomeAdmin:
		fmt.Println("YOU ARE CONTROL")
	case !ack.Ok && event == wire.Register:
		return fmt.Errorf("registration refused: %s", ack.Err)
	case !ack.Ok:
		fmt.Println(ack.Err)
	}
	return nil
}

func readLoop(conn *websocket.Conn, frames chan<- wire.Frame, readErr chan<- error) {
	for {
		var frame wire.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			readErr <- err
			return
		}
		frames <- frame
	}
}

func scanLines(lines chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
	close(lines)
}

func exitCode(err error) int {
	if err != nil {
		return exitRuntime
	}
	return exitOK
}

package workers

import (
	"callsign-relay/contract"
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"context"
	"log/slog"
)

var _ contract.Worker = (*SessionWorker)(nil)

// Handler applies one command to the session state.
type Handler interface {
	Handle(cmd domain.Command) ([]event.Event, error)
}

// SessionWorker is the single writer of the session state.
// Each command runs to completion before the next one is read,
// so registry and mute ledger never see interleaved mutations.
type SessionWorker struct {
	handler  Handler
	commands <-chan domain.Command
	events   chan<- event.Event
	log      *slog.Logger
}

func NewSessionWorker(handler Handler, commands <-chan domain.Command,
	events chan<- event.Event, log *slog.Logger) *SessionWorker {
	return &SessionWorker{handler: handler, commands: commands, events: events, log: log}
}

func (w *SessionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping session worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				w.log.Debug("Command channel is closed")
				return nil
			}
			if err := w.apply(ctx, cmd); err != nil {
				return err
			}
		}
	}
}

// apply acks the command before forwarding its events,
// a registering client learns its outcome before the join notice.
func (w *SessionWorker) apply(ctx context.Context, cmd domain.Command) error {
	events, err := w.handler.Handle(cmd)
	domain.Acknowledge(cmd, err)

	for _, evt := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case w.events <- evt:
		}
	}
	return nil
}

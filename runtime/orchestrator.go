package runtime

import (
	"callsign-relay/contract"
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"callsign-relay/errors"
	"callsign-relay/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"time"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

// Orchestrator connects transports to the session worker and the fanout.
// Transports push commands, the session worker turns them into events,
// the fanout delivers events to connections and permanent sinks.
type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	handler        workers.Handler
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	commands       chan domain.Command
	events         chan event.Event
	sinkTimeout    time.Duration
	done           chan struct{}
	stopOnce       sync.Once
}

func NewOrchestrator(log *slog.Logger, handler workers.Handler, supervisor contract.ISupervisor,
	registry contract.IRegistry, commandBufferSize, eventBufferSize int, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		handler:     handler,
		supervisor:  supervisor,
		registry:    registry,
		commands:    make(chan domain.Command, commandBufferSize),
		events:      make(chan event.Event, eventBufferSize),
		sinkTimeout: sinkTimeout,
		done:        make(chan struct{}),
	}
}

// Add registers permanent sinks. Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Start adds the session worker and the fanout to the supervisor and runs it in background.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	sinks := append([]contract.EventSink(nil), o.permanentSinks...)
	o.supervisor.Add(
		workers.NewSessionWorker(o.handler, o.commands, o.events, o.log),
		workers.NewEventFanout(o.log, o.registry, sinks, o.events, o.sinkTimeout),
	)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "permanent_sinks", len(sinks))
	go o.supervisor.Run(ctx)
}

// Connect makes a connection reachable by the fanout. It does not register a participant.
func (o *Orchestrator) Connect(id domain.ConnectionID, sink contract.EventSink) {
	o.registry.Subscribe(id, sink)
	o.log.Debug("Connection opened", "connection_id", id)
}

// Disconnect stops delivery to the connection, then lets the session forget it.
func (o *Orchestrator) Disconnect(ctx context.Context, id domain.ConnectionID) error {
	o.registry.Unsubscribe(id)
	o.log.Debug("Connection closed", "connection_id", id)
	return o.Dispatch(ctx, domain.DisconnectCommand{ConnectionID: id})
}

// Dispatch queues a command, waiting for room in the buffer.
// Commands are never dropped, a full buffer slows the sending transport down.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case o.commands <- cmd:
		return nil
	default:
	}
	o.log.Debug("Command channel full, waiting", "capacity", cap(o.commands))
	select {
	case o.commands <- cmd:
		return nil
	case <-o.done:
		return errors.ErrOrchestratorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Await dispatches a command carrying reply and waits for its acknowledgement.
func (o *Orchestrator) Await(ctx context.Context, cmd domain.Command, reply domain.Reply) error {
	if err := o.Dispatch(ctx, cmd); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-o.done:
		return errors.ErrOrchestratorClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) ConnectionCount() int {
	return o.registry.Count()
}

// Stop cancels the supervised workers. Pending and later commands are rejected.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.log.Info("Requesting orchestrator shutdown")
		close(o.done)
		o.supervisor.Stop()
	})
}

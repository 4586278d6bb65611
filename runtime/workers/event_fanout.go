package workers

import (
	"callsign-relay/contract"
	"callsign-relay/domain/event"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout delivers each event to the connections of its audience,
// then to every permanent sink (journal).
//
// Events are handled one at a time in arrival order, so two events sent to
// the same connection keep their order. A sink failing or exceeding the
// timeout loses the event; no retry is attempted.
type EventFanout struct {
	log            *slog.Logger
	registry       contract.IRegistry
	permanentSinks []contract.EventSink
	events         <-chan event.Event
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, registry contract.IRegistry, permanentSinks []contract.EventSink,
	events <-chan event.Event, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		registry:       registry,
		permanentSinks: permanentSinks,
		events:         events,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to its audience and to the permanent sinks.
func (w *EventFanout) Fanout(ctx context.Context, evt event.Event) {
	for _, sink := range w.audience(evt) {
		w.deliver(ctx, sink, evt)
	}
	for _, sink := range w.permanentSinks {
		w.deliver(ctx, sink, evt)
	}
}

func (w *EventFanout) audience(evt event.Event) []contract.EventSink {
	if evt.Audience == event.Everyone {
		return w.registry.Sinks()
	}
	sink, ok := w.registry.Sink(evt.Target)
	if !ok {
		w.log.Debug("Target connection is gone, event dropped", "event", evt.Name, "connection_id", evt.Target)
		return nil
	}
	return []contract.EventSink{sink}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.Event) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Warn("Sink failed to consume event", "event", evt.Name, "error", err)
	}
}

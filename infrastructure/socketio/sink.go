package socketio

import (
	"callsign-relay/contract"
	"callsign-relay/domain/event"
	"callsign-relay/infrastructure/wire"
	"context"
)

// Emitter is the part of socketio.Conn the sink writes to.
type Emitter interface {
	Emit(eventName string, v ...interface{})
}

var _ contract.EventSink = Sink{}

// Sink emits outbound events on one Socket.IO connection.
type Sink struct {
	conn Emitter
}

func NewSink(conn Emitter) Sink {
	return Sink{conn: conn}
}

func (s Sink) Consume(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if payload, ok := wire.Outbound(evt); ok {
		s.conn.Emit(string(evt.Name), payload)
		return nil
	}
	s.conn.Emit(string(evt.Name))
	return nil
}

package websocket

import (
	"callsign-relay/contract"
	"callsign-relay/domain/event"
	"callsign-relay/infrastructure/wire"
	"context"
	"sync"
)

var _ contract.EventSink = (*Sink)(nil)

// Sink writes outbound events as JSON frames on one connection.
// While held, events are queued so that an ack goes out before the
// notifications its request caused.
type Sink struct {
	conn *Connection

	mu      sync.Mutex
	held    bool
	pending [][]byte
}

func NewSink(conn *Connection) *Sink {
	return &Sink{conn: conn}
}

func (s *Sink) Consume(ctx context.Context, evt event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := wire.EncodeEvent(evt)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held {
		s.pending = append(s.pending, payload)
		return nil
	}
	return s.conn.Send(payload)
}

// Hold queues every event consumed until Release.
func (s *Sink) Hold() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = true
}

// Release sends first, when not nil, then the queued events in order.
func (s *Sink) Release(first []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = false
	pending := s.pending
	s.pending = nil

	if first != nil {
		if err := s.conn.Send(first); err != nil {
			return err
		}
	}
	for _, payload := range pending {
		if err := s.conn.Send(payload); err != nil {
			return err
		}
	}
	return nil
}

package wire

import (
	"callsign-relay/contract"
	"callsign-relay/domain"
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// SecretVerifier checks the shared moderator password.
type SecretVerifier interface {
	Verify(password string) bool
}

// Gateway is the transport independent entry point of inbound traffic.
// It runs on the goroutine of the connection that sent the event.
type Gateway struct {
	log          *slog.Logger
	orchestrator contract.IOrchestrator
	decoder      *Decoder
	secret       SecretVerifier
	ackTimeout   time.Duration
}

func NewGateway(log *slog.Logger, orchestrator contract.IOrchestrator, decoder *Decoder,
	secret SecretVerifier, ackTimeout time.Duration) *Gateway {
	return &Gateway{log: log, orchestrator: orchestrator, decoder: decoder, secret: secret, ackTimeout: ackTimeout}
}

// Open makes the connection reachable by outbound events.
func (g *Gateway) Open(id domain.ConnectionID, sink contract.EventSink) {
	g.orchestrator.Connect(id, sink)
}

// Close detaches the connection and removes its participant, if any.
func (g *Gateway) Close(id domain.ConnectionID) {
	ctx, cancel := context.WithTimeout(context.Background(), g.ackTimeout)
	defer cancel()
	if err := g.orchestrator.Disconnect(ctx, id); err != nil {
		g.log.Warn("Disconnect was not delivered", "connection_id", id, "error", err)
	}
}

// Submit decodes one inbound event and forwards it to the session.
// The returned ack is meaningful only when ok is true.
// Malformed or unknown events are dropped without notice unless an ack is expected.
func (g *Gateway) Submit(ctx context.Context, id domain.ConnectionID, address, event string,
	data json.RawMessage) (ack Ack, ok bool) {
	expectsAck := ExpectsAck(event)
	var reply domain.Reply
	if expectsAck {
		reply = domain.NewReply()
	}

	cmd, err := g.decoder.Decode(id, address, event, data, reply)
	if err != nil {
		g.log.Debug("Inbound event dropped", "connection_id", id, "event", event, "error", err)
		return NewAck(err), expectsAck
	}
	cmd = g.authorize(cmd)

	if !expectsAck {
		if err = g.orchestrator.Dispatch(ctx, cmd); err != nil {
			g.log.Warn("Command not dispatched", "connection_id", id, "event", event, "error", err)
		}
		return Ack{}, false
	}

	ackCtx, cancel := context.WithTimeout(ctx, g.ackTimeout)
	defer cancel()
	err = g.orchestrator.Await(ackCtx, cmd, reply)
	if err != nil {
		g.log.Debug("Request rejected", "connection_id", id, "event", event, "error", err)
	}
	return NewAck(err), true
}

// authorize checks a moderator password before it reaches the session worker,
// so a slow hash comparison only delays the connection that asked.
func (g *Gateway) authorize(cmd domain.Command) domain.Command {
	becomeAdmin, ok := cmd.(domain.BecomeAdminCommand)
	if !ok {
		return cmd
	}
	becomeAdmin.Verified = g.secret.Verify(becomeAdmin.Password)
	becomeAdmin.Password = ""
	return becomeAdmin
}

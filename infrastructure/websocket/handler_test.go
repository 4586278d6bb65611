package websocket

import (
	"callsign-relay/auth"
	"callsign-relay/contract"
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"callsign-relay/infrastructure/wire"
	"callsign-relay/mocks"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHandler_Register_Ack_Precedes_Join_Notice(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	decoder, err := wire.NewDecoder(64)
	req.NoError(err)
	gateway := wire.NewGateway(log, orchestrator, decoder, auth.ModeratorSecret{}, time.Second)

	sinks := make(chan contract.EventSink, 1)
	disconnected := make(chan domain.ConnectionID, 1)
	orchestrator.EXPECT().Connect(gomock.Any(), gomock.Any()).
		Do(func(id domain.ConnectionID, sink contract.EventSink) { sinks <- sink }).Times(1)
	orchestrator.EXPECT().Await(gomock.Any(), gomock.AssignableToTypeOf(domain.RegisterCommand{}), gomock.Any()).
		DoAndReturn(func(ctx context.Context, cmd domain.Command, reply domain.Reply) error {
			req.Equal("127.0.0.1", cmd.(domain.RegisterCommand).NetworkAddress)
			// The fanout delivers the join notice before Await returns
			sink := <-sinks
			req.NoError(sink.Consume(context.Background(), event.ToEveryone(event.System, "ALPHA CONNECTED", time.Now())))
			sinks <- sink
			return nil
		}).Times(1)
	orchestrator.EXPECT().Disconnect(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id domain.ConnectionID) error {
			disconnected <- id
			return nil
		}).Times(1)

	server := httptest.NewServer(NewHandler(log, gateway, 8))
	defer server.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	req.NoError(err)

	// When the client registers with ack id 1
	req.NoError(client.WriteJSON(map[string]any{
		"event": "register", "data": map[string]string{"callsign": "ALPHA", "name": "ONE"}, "ack": 1,
	}))

	// Then the ack frame answers it first
	var frame wire.Frame
	req.NoError(client.ReadJSON(&frame))
	req.Equal(wire.AckEvent, frame.Event)
	req.NotNil(frame.Ack)
	req.Equal(1, *frame.Ack)
	req.JSONEq(`{"ok":true}`, string(frame.Data))

	// And the join notice follows it
	req.NoError(client.ReadJSON(&frame))
	req.Equal("system", frame.Event)
	req.JSONEq(`{"text":"ALPHA CONNECTED"}`, string(frame.Data))

	// When the fanout delivers another event, it is no longer held
	sink := <-sinks
	req.NoError(sink.Consume(context.Background(), event.ToEveryone(event.Chat, "ALPHA: ONE", time.Now())))
	req.NoError(client.ReadJSON(&frame))
	req.Equal("chat", frame.Event)
	req.JSONEq(`{"text":"ALPHA: ONE"}`, string(frame.Data))

	// When the client leaves, the session is told
	req.NoError(client.Close())
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		req.Fail("Disconnect was not dispatched")
	}
}

func TestHandler_Drops_Malformed_Frames(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	orchestrator := mocks.NewMockIOrchestrator(ctrl)
	decoder, err := wire.NewDecoder(64)
	req.NoError(err)
	gateway := wire.NewGateway(log, orchestrator, decoder, auth.ModeratorSecret{}, time.Second)

	disconnected := make(chan struct{})
	orchestrator.EXPECT().Connect(gomock.Any(), gomock.Any()).Times(1)
	orchestrator.EXPECT().Dispatch(gomock.Any(), gomock.AssignableToTypeOf(domain.LeaveAdminCommand{})).Return(nil).Times(1)
	orchestrator.EXPECT().Disconnect(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, id domain.ConnectionID) error {
			close(disconnected)
			return nil
		}).Times(1)

	server := httptest.NewServer(NewHandler(log, gateway, 8))
	defer server.Close()
	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	req.NoError(err)

	// Given a garbage frame and an unknown event, the connection survives
	req.NoError(client.WriteMessage(websocket.TextMessage, []byte("not json")))
	raw, _ := json.Marshal(wire.Frame{Event: "whoami"})
	req.NoError(client.WriteMessage(websocket.TextMessage, raw))
	raw, _ = json.Marshal(wire.Frame{Event: wire.LeaveAdmin})
	req.NoError(client.WriteMessage(websocket.TextMessage, raw))

	req.NoError(client.Close())
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		req.Fail("Disconnect was not dispatched")
	}
}

package wire

import (
	"callsign-relay/domain"
	"callsign-relay/errors"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoder_Decode(t *testing.T) {
	decoder, err := NewDecoder(16)
	require.NoError(t, err)
	reply := domain.NewReply()

	tests := []struct {
		name     string
		event    string
		data     string
		expected domain.Command
	}{
		{"register", Register, `{"callsign":"ALPHA","name":"ONE"}`,
			domain.RegisterCommand{ConnectionID: "c1", Callsign: "ALPHA", DisplayName: "ONE", NetworkAddress: "10.0.0.1", Reply: reply}},
		{"becomeAdmin", BecomeAdmin, `{"password":"admin123"}`,
			domain.BecomeAdminCommand{ConnectionID: "c1", Password: "admin123", Reply: reply}},
		{"leaveAdmin without payload", LeaveAdmin, ``, domain.LeaveAdminCommand{ConnectionID: "c1"}},
		{"chat", Chat, `{"text":"KILO LIMA","to":"BRAVO"}`,
			domain.ChatCommand{ConnectionID: "c1", Text: "KILO LIMA", To: "BRAVO"}},
		{"chat with null payload", Chat, `null`, domain.ChatCommand{ConnectionID: "c1"}},
		{"adminBroadcast", AdminBroadcast, `{"text":"all stations"}`,
			domain.AdminBroadcastCommand{ConnectionID: "c1", Text: "all stations"}},
		{"adminDM", AdminDM, `{"to":"ALPHA","text":"hi"}`,
			domain.AdminDMCommand{ConnectionID: "c1", To: "ALPHA", Text: "hi"}},
		{"adminMuteUser", AdminMuteUser, `{"callsign":"ALPHA","minutes":0.5}`,
			domain.AdminMuteCommand{ConnectionID: "c1", Callsign: "ALPHA", Minutes: 0.5}},
		{"adminUnmuteUser", AdminUnmuteUser, `{"callsign":"ALPHA"}`,
			domain.AdminUnmuteCommand{ConnectionID: "c1", Callsign: "ALPHA"}},
		{"adminLogoutUser", AdminLogoutUser, `{"callsign":"ALPHA"}`,
			domain.AdminLogoutCommand{ConnectionID: "c1", Callsign: "ALPHA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			var r domain.Reply
			if ExpectsAck(tt.event) {
				r = reply
			}
			cmd, err := decoder.Decode("c1", "10.0.0.1", tt.event, json.RawMessage(tt.data), r)
			req.NoError(err)
			req.Equal(tt.expected, cmd)
		})
	}
}

func TestDecoder_Rejects(t *testing.T) {
	decoder, err := NewDecoder(16)
	require.NoError(t, err)

	tests := []struct {
		name     string
		event    string
		data     string
		expected error
	}{
		{"unknown event", "typing", `{}`, errors.ErrUnknownEvent},
		{"malformed json", Chat, `{"text":`, errors.ErrInvalidPayload},
		{"wrong type", AdminMuteUser, `{"callsign":"ALPHA","minutes":"ten"}`, errors.ErrInvalidPayload},
		{"negative minutes", AdminMuteUser, `{"callsign":"ALPHA","minutes":-1}`, errors.ErrInvalidPayload},
		{"text too long", Chat, `{"text":"` + strings.Repeat("A", 17) + `"}`, errors.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decoder.Decode("c1", "10.0.0.1", tt.event, json.RawMessage(tt.data), nil)
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestDecoder_Unbounded(t *testing.T) {
	req := require.New(t)
	decoder, err := NewDecoder(0)
	req.NoError(err)

	_, err = decoder.Decode("c1", "", Chat, json.RawMessage(`{"text":"`+strings.Repeat("A", 10_000)+`"}`), nil)
	req.NoError(err)
}

func TestNewAck(t *testing.T) {
	req := require.New(t)
	req.Equal(Ack{Ok: true}, NewAck(nil))
	req.Equal(Ack{Ok: false, Err: "CALLSIGN IN USE"}, NewAck(errors.ErrCallsignTaken))
	req.Equal(Ack{Ok: false, Err: "SERVER ERROR"}, NewAck(errors.ErrOrchestratorClosed))

	raw, err := json.Marshal(NewAck(nil))
	req.NoError(err)
	req.JSONEq(`{"ok":true}`, string(raw))
}

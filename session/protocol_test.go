package session

import (
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"callsign-relay/errors"
	"callsign-relay/moderation"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	clock    *fakeClock
	protocol *Protocol
}

func newFixture(t *testing.T) fixture {
	clock := newClock()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	protocol := NewProtocol(log, newRegistry(t, clock), moderation.NewMuteLedger(clock), clock)
	return fixture{clock: clock, protocol: protocol}
}

func (f fixture) register(t *testing.T, id domain.ConnectionID, callsign, address string) {
	_, err := f.protocol.Register(domain.RegisterCommand{
		ConnectionID: id, Callsign: callsign, DisplayName: "ONE", NetworkAddress: address,
	})
	require.NoError(t, err)
}

func (f fixture) elevate(t *testing.T, id domain.ConnectionID) {
	_, err := f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: id, Verified: true})
	require.NoError(t, err)
}

func names(events []event.Event) []event.Name {
	return lo.Map(events, func(e event.Event, _ int) event.Name { return e.Name })
}

func TestProtocol_Register_Announces_And_Broadcasts_Roster(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	events, err := f.protocol.Register(domain.RegisterCommand{
		ConnectionID: "c1", Callsign: "ALPHA", DisplayName: "BRAVO", NetworkAddress: "10.0.0.1",
	})

	req.NoError(err)
	req.Equal([]event.Name{event.System, event.UserUpdate}, names(events))
	req.Equal("ALPHA CONNECTED", events[0].Text)
	req.Equal(event.Everyone, events[0].Audience)
	req.Len(events[1].Roster, 1)
	req.Equal("ALPHA", events[1].Roster[0].Callsign)
}

func TestProtocol_Register_Failures_Emit_Nothing(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")

	// Given the same callsign on another connection
	events, err := f.protocol.Register(domain.RegisterCommand{
		ConnectionID: "c2", Callsign: "ALPHA", DisplayName: "ONE", NetworkAddress: "10.0.0.2",
	})
	req.ErrorIs(err, errors.ErrCallsignTaken)
	req.Empty(events)

	// Given a second registration on the same connection
	events, err = f.protocol.Register(domain.RegisterCommand{
		ConnectionID: "c1", Callsign: "BRAVO", DisplayName: "ONE", NetworkAddress: "10.0.0.1",
	})
	req.ErrorIs(err, errors.ErrAlreadyRegistered)
	req.Empty(events)

	// Given the reserved token
	_, err = f.protocol.Register(domain.RegisterCommand{
		ConnectionID: "c3", Callsign: "CONTROL", DisplayName: "ONE", NetworkAddress: "10.0.0.3",
	})
	req.ErrorIs(err, errors.ErrReservedCallsign)
	req.Len(f.protocol.Roster(), 1)
}

func TestProtocol_BecomeAdmin_Then_LeaveAdmin(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA ONE", "10.0.0.1")

	// When the password was verified
	events, err := f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: true})

	// Then the callsign is prefixed and the roster re-broadcast
	req.NoError(err)
	req.Equal([]event.Name{event.UserUpdate}, names(events))
	roster := f.protocol.Roster()
	req.Equal("CONTROL ALPHA ONE", roster[0].Callsign)
	req.True(roster[0].IsModerator)

	// When the moderator steps down
	events = f.protocol.LeaveAdmin(domain.LeaveAdminCommand{ConnectionID: "c1"})

	// Then the original callsign is back and only the caller is logged out
	req.Len(events, 1)
	req.Equal(event.ForceLogout, events[0].Name)
	req.Equal(event.One, events[0].Audience)
	req.Equal(domain.ConnectionID("c1"), events[0].Target)
	roster = f.protocol.Roster()
	req.Equal("ALPHA ONE", roster[0].Callsign)
	req.False(roster[0].IsModerator)
}

func TestProtocol_BecomeAdmin_Failures(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given an unregistered connection, a refused password is reported first
	_, err := f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: false})
	req.ErrorIs(err, errors.ErrBadCredentials)

	// And a verified password is refused for lack of registration
	_, err = f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: true})
	req.ErrorIs(err, errors.ErrNotRegistered)

	// Given a registered participant with a wrong password
	f.register(t, "c1", "ALPHA", "10.0.0.1")
	events, err := f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: false})
	req.ErrorIs(err, errors.ErrBadCredentials)
	req.Empty(events)
	req.False(f.protocol.Roster()[0].IsModerator)

	// Given an existing moderator, elevation again changes nothing
	f.elevate(t, "c1")
	events, err = f.protocol.BecomeAdmin(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: true})
	req.NoError(err)
	req.Empty(events)
	req.Equal("CONTROL ALPHA", f.protocol.Roster()[0].Callsign)
}

func TestProtocol_LeaveAdmin_Ignored_When_Not_Moderator(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")

	req.Empty(f.protocol.LeaveAdmin(domain.LeaveAdminCommand{ConnectionID: "c1"}))
	req.Empty(f.protocol.LeaveAdmin(domain.LeaveAdminCommand{ConnectionID: "unknown"}))
	req.Equal("ALPHA", f.protocol.Roster()[0].Callsign)
}

func TestProtocol_Chat(t *testing.T) {
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")
	f.register(t, "c2", "BRAVO", "10.0.0.2")
	f.elevate(t, "c2")

	tests := []struct {
		name     string
		cmd      domain.ChatCommand
		expected []event.Event
	}{
		{
			name:     "Vocabulary message",
			cmd:      domain.ChatCommand{ConnectionID: "c1", Text: "ONE TWO"},
			expected: []event.Event{event.ToEveryone(event.Chat, "ALPHA: ONE TWO", f.clock.now)},
		},
		{
			name:     "Labelled recipient still broadcasts",
			cmd:      domain.ChatCommand{ConnectionID: "c1", Text: "ECHO", To: "NOBODY"},
			expected: []event.Event{event.ToEveryone(event.Chat, "ALPHA TO NOBODY: ECHO", f.clock.now)},
		},
		{
			name:     "Non vocabulary text is dropped silently",
			cmd:      domain.ChatCommand{ConnectionID: "c1", Text: "hello"},
			expected: nil,
		},
		{
			name:     "Moderator bypasses the vocabulary",
			cmd:      domain.ChatCommand{ConnectionID: "c2", Text: "hello"},
			expected: []event.Event{event.ToEveryone(event.Chat, "CONTROL BRAVO: hello", f.clock.now)},
		},
		{
			name:     "Unregistered connection is ignored",
			cmd:      domain.ChatCommand{ConnectionID: "ghost", Text: "ALPHA"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, f.protocol.Chat(tt.cmd))
		})
	}
}

func TestProtocol_Mute_Expires_After_Duration(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "mod", "ALPHA", "10.0.0.1")
	f.elevate(t, "mod")
	f.register(t, "c1", "BRAVO", "10.0.0.2")

	// When the moderator mutes BRAVO for one minute
	events := f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "BRAVO", Minutes: 1})

	// Then everyone is told and the target receives a direct notice
	req.Len(events, 2)
	req.Equal(event.ToEveryone(event.System, "BRAVO MUTED FOR 1 MINUTES", f.clock.now), events[0])
	req.Equal(event.ToOne("c1", event.AdminDM, "YOU ARE MUTED FOR 1 MINUTES", f.clock.now), events[1])

	// When BRAVO chats within the minute
	f.clock.Advance(30 * time.Second)
	events = f.protocol.Chat(domain.ChatCommand{ConnectionID: "c1", Text: "ONE"})

	// Then only the sender is told it is muted
	req.Equal([]event.Event{event.ToOne("c1", event.Muted, "", f.clock.now)}, events)

	// When the minute has elapsed
	f.clock.Advance(31 * time.Second)
	events = f.protocol.Chat(domain.ChatCommand{ConnectionID: "c1", Text: "ONE"})

	// Then the chat is broadcast again
	req.Equal([]event.Event{event.ToEveryone(event.Chat, "BRAVO: ONE", f.clock.now)}, events)
}

func TestProtocol_Mute_Follows_Network_Address(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "mod", "ALPHA", "10.0.0.1")
	f.elevate(t, "mod")
	f.register(t, "c1", "BRAVO", "10.0.0.2")
	f.register(t, "c2", "CHARLIE", "10.0.0.2")

	f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "BRAVO", Minutes: 0.5})

	// Then a neighbour behind the same address is muted too
	events := f.protocol.Chat(domain.ChatCommand{ConnectionID: "c2", Text: "ONE"})
	req.Equal([]event.Name{event.Muted}, names(events))
	req.Equal(domain.ConnectionID("c2"), events[0].Target)

	// When the moderator unmutes BRAVO
	events = f.protocol.AdminUnmute(domain.AdminUnmuteCommand{ConnectionID: "mod", Callsign: "BRAVO"})
	req.Equal([]event.Event{event.ToOne("c1", event.Unmuted, "", f.clock.now)}, events)

	// Then the whole address speaks again
	events = f.protocol.Chat(domain.ChatCommand{ConnectionID: "c2", Text: "ONE"})
	req.Equal([]event.Name{event.Chat}, names(events))
}

func TestProtocol_Mute_Notice_Formats_Decimal_Minutes(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "mod", "ALPHA", "10.0.0.1")
	f.elevate(t, "mod")
	f.register(t, "c1", "BRAVO", "10.0.0.2")

	events := f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "BRAVO", Minutes: 2.5})
	req.Equal("BRAVO MUTED FOR 2.5 MINUTES", events[0].Text)
}

func TestProtocol_Huge_Mute_Is_Applied(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "mod", "ALPHA", "10.0.0.1")
	f.elevate(t, "mod")
	f.register(t, "c1", "BRAVO", "10.0.0.2")

	// Given a mute announced for a billion minutes
	events := f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "BRAVO", Minutes: 1e9})
	req.Equal("BRAVO MUTED FOR 1000000000 MINUTES", events[0].Text)

	// Then the target is really muted
	events = f.protocol.Chat(domain.ChatCommand{ConnectionID: "c1", Text: "ONE"})
	req.Equal([]event.Name{event.Muted}, names(events))
}

func TestProtocol_Moderation_Is_Silent_When_Unauthorized(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")
	f.register(t, "c2", "BRAVO", "10.0.0.2")
	f.register(t, "mod", "CHARLIE", "10.0.0.3")
	f.elevate(t, "mod")
	f.register(t, "mod2", "DELTA", "10.0.0.4")
	f.elevate(t, "mod2")

	// Given a non moderator actor, every moderation action is ignored
	req.Empty(f.protocol.AdminBroadcast(domain.AdminBroadcastCommand{ConnectionID: "c1", Text: "hi"}))
	req.Empty(f.protocol.AdminDM(domain.AdminDMCommand{ConnectionID: "c1", To: "BRAVO", Text: "hi"}))
	req.Empty(f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "c1", Callsign: "BRAVO", Minutes: 5}))
	req.Empty(f.protocol.AdminUnmute(domain.AdminUnmuteCommand{ConnectionID: "c1", Callsign: "BRAVO"}))
	req.Empty(f.protocol.AdminLogout(domain.AdminLogoutCommand{ConnectionID: "c1", Callsign: "BRAVO"}))

	// Given a moderator aimed at an unknown callsign
	req.Empty(f.protocol.AdminDM(domain.AdminDMCommand{ConnectionID: "mod", To: "ZULU", Text: "hi"}))
	req.Empty(f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "ZULU", Minutes: 5}))
	req.Empty(f.protocol.AdminUnmute(domain.AdminUnmuteCommand{ConnectionID: "mod", Callsign: "ZULU"}))
	req.Empty(f.protocol.AdminLogout(domain.AdminLogoutCommand{ConnectionID: "mod", Callsign: "ZULU"}))

	// Given a moderator aimed at another moderator
	req.Empty(f.protocol.AdminDM(domain.AdminDMCommand{ConnectionID: "mod", To: "CONTROL DELTA", Text: "hi"}))
	req.Empty(f.protocol.AdminMute(domain.AdminMuteCommand{ConnectionID: "mod", Callsign: "CONTROL DELTA", Minutes: 5}))

	// Then nobody is muted
	events := f.protocol.Chat(domain.ChatCommand{ConnectionID: "c2", Text: "ONE"})
	req.Equal([]event.Name{event.Chat}, names(events))
}

func TestProtocol_Moderator_Actions(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")
	f.register(t, "mod", "CHARLIE", "10.0.0.3")
	f.elevate(t, "mod")
	f.register(t, "mod2", "DELTA", "10.0.0.4")
	f.elevate(t, "mod2")

	// Broadcast goes to everyone without vocabulary restriction
	events := f.protocol.AdminBroadcast(domain.AdminBroadcastCommand{ConnectionID: "mod", Text: "Server restarts soon"})
	req.Equal([]event.Event{event.ToEveryone(event.AdminMessage, "Server restarts soon", f.clock.now)}, events)

	// DM goes to the target only
	events = f.protocol.AdminDM(domain.AdminDMCommand{ConnectionID: "mod", To: "ALPHA", Text: "behave"})
	req.Equal([]event.Event{event.ToOne("c1", event.AdminDM, "behave", f.clock.now)}, events)

	// Logout reaches moderators too
	events = f.protocol.AdminLogout(domain.AdminLogoutCommand{ConnectionID: "mod", Callsign: "CONTROL DELTA"})
	req.Equal([]event.Event{event.ToOne("mod2", event.ForceLogout, "", f.clock.now)}, events)

	// Unmute reaches moderators too
	events = f.protocol.AdminUnmute(domain.AdminUnmuteCommand{ConnectionID: "mod", Callsign: "CONTROL DELTA"})
	req.Equal([]event.Event{event.ToOne("mod2", event.Unmuted, "", f.clock.now)}, events)
}

func TestProtocol_Disconnect_Updates_Roster(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.register(t, "c1", "ALPHA", "10.0.0.1")
	f.register(t, "c2", "BRAVO", "10.0.0.2")

	events := f.protocol.Disconnect(domain.DisconnectCommand{ConnectionID: "c1"})

	// Then the roster no longer lists the participant and no departure notice is sent
	req.Equal([]event.Name{event.UserUpdate}, names(events))
	req.Len(events[0].Roster, 1)
	req.Equal("BRAVO", events[0].Roster[0].Callsign)

	// And an unregistered connection still triggers a roster update
	events = f.protocol.Disconnect(domain.DisconnectCommand{ConnectionID: "ghost"})
	req.Equal([]event.Name{event.UserUpdate}, names(events))
}

func TestProtocol_Handle_Routes_Commands(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	events, err := f.protocol.Handle(domain.RegisterCommand{
		ConnectionID: "c1", Callsign: "ALPHA", DisplayName: "ONE", NetworkAddress: "10.0.0.1",
	})
	req.NoError(err)
	req.Len(events, 2)

	_, err = f.protocol.Handle(domain.BecomeAdminCommand{ConnectionID: "c1", Verified: false})
	req.ErrorIs(err, errors.ErrBadCredentials)

	events, err = f.protocol.Handle(domain.ChatCommand{ConnectionID: "c1", Text: "ONE"})
	req.NoError(err)
	req.Equal([]event.Name{event.Chat}, names(events))

	events, err = f.protocol.Handle(domain.DisconnectCommand{ConnectionID: "c1"})
	req.NoError(err)
	req.Empty(events[0].Roster)
}

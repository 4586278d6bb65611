package session

import (
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"callsign-relay/errors"
	"callsign-relay/moderation"
	"fmt"
	"log/slog"
	"strconv"
)

// Protocol is the per-connection state machine:
// Unregistered -> Registered <-> Elevated -> Disconnected.
// Each operation returns the events it produced, in emission order.
// Unauthorized moderation requests produce nothing and report nothing.
type Protocol struct {
	log      *slog.Logger
	registry *Registry
	mutes    *moderation.MuteLedger
	clock    domain.Clock
}

func NewProtocol(log *slog.Logger, registry *Registry, mutes *moderation.MuteLedger, clock domain.Clock) *Protocol {
	return &Protocol{log: log, registry: registry, mutes: mutes, clock: clock}
}

// Handle routes a command to its operation. The error is meant for the ack only.
func (p *Protocol) Handle(cmd domain.Command) ([]event.Event, error) {
	switch c := cmd.(type) {
	case domain.RegisterCommand:
		return p.Register(c)
	case domain.BecomeAdminCommand:
		return p.BecomeAdmin(c)
	case domain.LeaveAdminCommand:
		return p.LeaveAdmin(c), nil
	case domain.ChatCommand:
		return p.Chat(c), nil
	case domain.AdminBroadcastCommand:
		return p.AdminBroadcast(c), nil
	case domain.AdminDMCommand:
		return p.AdminDM(c), nil
	case domain.AdminMuteCommand:
		return p.AdminMute(c), nil
	case domain.AdminUnmuteCommand:
		return p.AdminUnmute(c), nil
	case domain.AdminLogoutCommand:
		return p.AdminLogout(c), nil
	case domain.DisconnectCommand:
		return p.Disconnect(c), nil
	default:
		p.log.Debug("Unknown command dropped", "type", fmt.Sprintf("%T", cmd))
		return nil, nil
	}
}

func (p *Protocol) Register(cmd domain.RegisterCommand) ([]event.Event, error) {
	if _, ok := p.registry.FindByConnection(cmd.ConnectionID); ok {
		return nil, errors.ErrAlreadyRegistered
	}
	participant, err := p.registry.Register(cmd.ConnectionID, cmd.Callsign, cmd.DisplayName, cmd.NetworkAddress)
	if err != nil {
		p.log.Debug("Registration refused", "connection_id", cmd.ConnectionID, "error", err)
		return nil, err
	}
	p.log.Info("Participant registered",
		"connection_id", participant.ConnectionID,
		"callsign", participant.Callsign,
		"address", participant.NetworkAddress)

	now := p.clock.Now()
	return []event.Event{
		event.ToEveryone(event.System, participant.Callsign+" CONNECTED", now),
		p.roster(),
	}, nil
}

// BecomeAdmin refuses an unverified password before looking the caller up.
// The password itself was checked upstream, outside the session worker.
func (p *Protocol) BecomeAdmin(cmd domain.BecomeAdminCommand) ([]event.Event, error) {
	if !cmd.Verified {
		p.log.Warn("Moderator login refused", "connection_id", cmd.ConnectionID)
		return nil, errors.ErrBadCredentials
	}
	participant, ok := p.registry.FindByConnection(cmd.ConnectionID)
	if !ok {
		return nil, errors.ErrNotRegistered
	}
	if participant.IsModerator {
		return nil, nil
	}
	participant.Elevate()
	p.log.Info("Participant elevated", "connection_id", cmd.ConnectionID, "callsign", participant.Callsign)
	return []event.Event{p.roster()}, nil
}

// LeaveAdmin restores the prior callsign and forces the caller to log in again.
func (p *Protocol) LeaveAdmin(cmd domain.LeaveAdminCommand) []event.Event {
	participant, ok := p.registry.FindByConnection(cmd.ConnectionID)
	if !ok || !participant.IsModerator {
		return nil
	}
	participant.Demote()
	p.log.Info("Moderator stepped down", "connection_id", cmd.ConnectionID, "callsign", participant.Callsign)
	return []event.Event{event.ToOne(cmd.ConnectionID, event.ForceLogout, "", p.clock.Now())}
}

// Chat broadcasts to everyone, To only changes the label of the message.
func (p *Protocol) Chat(cmd domain.ChatCommand) []event.Event {
	sender, ok := p.registry.FindByConnection(cmd.ConnectionID)
	if !ok {
		return nil
	}
	now := p.clock.Now()
	if p.mutes.IsMuted(sender.NetworkAddress) {
		return []event.Event{event.ToOne(sender.ConnectionID, event.Muted, "", now)}
	}
	if !sender.IsModerator && !domain.IsRestrictedVocabulary(cmd.Text) {
		p.log.Debug("Chat outside vocabulary dropped", "connection_id", cmd.ConnectionID)
		return nil
	}

	text := fmt.Sprintf("%s: %s", sender.Callsign, cmd.Text)
	if cmd.To != "" {
		text = fmt.Sprintf("%s TO %s: %s", sender.Callsign, cmd.To, cmd.Text)
	}
	return []event.Event{event.ToEveryone(event.Chat, text, now)}
}

func (p *Protocol) AdminBroadcast(cmd domain.AdminBroadcastCommand) []event.Event {
	if _, ok := p.moderator(cmd.ConnectionID); !ok {
		return nil
	}
	return []event.Event{event.ToEveryone(event.AdminMessage, cmd.Text, p.clock.Now())}
}

// AdminDM cannot target another moderator.
func (p *Protocol) AdminDM(cmd domain.AdminDMCommand) []event.Event {
	if _, ok := p.moderator(cmd.ConnectionID); !ok {
		return nil
	}
	target, ok := p.registry.FindByCallsign(cmd.To)
	if !ok || target.IsModerator {
		return nil
	}
	return []event.Event{event.ToOne(target.ConnectionID, event.AdminDM, cmd.Text, p.clock.Now())}
}

// AdminMute silences the whole network address of a non moderator target.
func (p *Protocol) AdminMute(cmd domain.AdminMuteCommand) []event.Event {
	moderator, ok := p.moderator(cmd.ConnectionID)
	if !ok {
		return nil
	}
	target, ok := p.registry.FindByCallsign(cmd.Callsign)
	if !ok || target.IsModerator {
		return nil
	}

	expiresAt := p.mutes.Mute(target.NetworkAddress, cmd.Minutes)
	p.log.Info("Participant muted",
		"moderator", moderator.Callsign,
		"callsign", target.Callsign,
		"address", target.NetworkAddress,
		"expires_at", expiresAt)

	minutes := formatMinutes(cmd.Minutes)
	now := p.clock.Now()
	return []event.Event{
		event.ToEveryone(event.System, fmt.Sprintf("%s MUTED FOR %s MINUTES", target.Callsign, minutes), now),
		event.ToOne(target.ConnectionID, event.AdminDM, fmt.Sprintf("YOU ARE MUTED FOR %s MINUTES", minutes), now),
	}
}

// AdminUnmute accepts any existing target, moderators included.
func (p *Protocol) AdminUnmute(cmd domain.AdminUnmuteCommand) []event.Event {
	if _, ok := p.moderator(cmd.ConnectionID); !ok {
		return nil
	}
	target, ok := p.registry.FindByCallsign(cmd.Callsign)
	if !ok {
		return nil
	}
	p.mutes.Unmute(target.NetworkAddress)
	p.log.Info("Participant unmuted", "callsign", target.Callsign, "address", target.NetworkAddress)
	return []event.Event{event.ToOne(target.ConnectionID, event.Unmuted, "", p.clock.Now())}
}

func (p *Protocol) AdminLogout(cmd domain.AdminLogoutCommand) []event.Event {
	if _, ok := p.moderator(cmd.ConnectionID); !ok {
		return nil
	}
	target, ok := p.registry.FindByCallsign(cmd.Callsign)
	if !ok {
		return nil
	}
	p.log.Info("Participant logged out by moderator", "callsign", target.Callsign)
	return []event.Event{event.ToOne(target.ConnectionID, event.ForceLogout, "", p.clock.Now())}
}

// Disconnect removes the participant and re-broadcasts the roster, registered or not.
func (p *Protocol) Disconnect(cmd domain.DisconnectCommand) []event.Event {
	p.registry.Remove(cmd.ConnectionID)
	p.log.Debug("Connection left", "connection_id", cmd.ConnectionID)
	return []event.Event{p.roster()}
}

// Roster returns the current public roster.
func (p *Protocol) Roster() []domain.View {
	return p.registry.Snapshot()
}

func (p *Protocol) moderator(id domain.ConnectionID) (*domain.Participant, bool) {
	participant, ok := p.registry.FindByConnection(id)
	if !ok || !participant.IsModerator {
		return nil, false
	}
	return participant, true
}

func (p *Protocol) roster() event.Event {
	return event.Roster(p.registry.Snapshot(), p.clock.Now())
}

// formatMinutes prints 1 as "1" and 0.5 as "0.5".
func formatMinutes(minutes float64) string {
	return strconv.FormatFloat(minutes, 'f', -1, 64)
}

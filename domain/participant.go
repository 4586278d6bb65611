// Package domain contains core concepts of the chat relay.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"time"
)

// ConnectionID is assigned by the transport when a connection is accepted.
type ConnectionID string

// Participant is a registered connection.
// PriorCallsign is set only while IsModerator is true.
type Participant struct {
	ConnectionID   ConnectionID
	Callsign       string
	DisplayName    string
	IsModerator    bool
	PriorCallsign  *string
	NetworkAddress string
	ConnectedAt    time.Time
}

// Elevate turns the participant into a moderator and prefixes its callsign.
func (p *Participant) Elevate() {
	prior := p.Callsign
	p.PriorCallsign = &prior
	p.Callsign = ModeratorPrefix + prior
	p.IsModerator = true
}

// Demote restores the callsign the participant had before Elevate.
func (p *Participant) Demote() {
	if p.PriorCallsign != nil {
		p.Callsign = *p.PriorCallsign
	} else {
		p.Callsign = strings.TrimPrefix(p.Callsign, ModeratorPrefix)
	}
	p.PriorCallsign = nil
	p.IsModerator = false
}

// View is the public roster entry sent to every client.
type View struct {
	ConnectionID   ConnectionID
	Callsign       string
	DisplayName    string
	IsModerator    bool
	NetworkAddress string
	ConnectedAt    time.Time
}

func (p Participant) View() View {
	return View{
		ConnectionID:   p.ConnectionID,
		Callsign:       p.Callsign,
		DisplayName:    p.DisplayName,
		IsModerator:    p.IsModerator,
		NetworkAddress: p.NetworkAddress,
		ConnectedAt:    p.ConnectedAt,
	}
}

package wire

import (
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"net"

	"github.com/samber/lo"
)

// RosterView is one entry of the userUpdate payload.
type RosterView struct {
	SocketID    string `json:"socketId"`
	Callsign    string `json:"callsign"`
	Name        string `json:"name"`
	Admin       bool   `json:"admin"`
	IP          string `json:"ip"`
	ConnectedAt int64  `json:"connectedAt"`
}

type OutboundText struct {
	Text string `json:"text"`
}

// Outbound returns the wire payload of evt.
// ok is false for events emitted without payload (muted, unmuted, forceLogout).
func Outbound(evt event.Event) (payload any, ok bool) {
	switch {
	case evt.HasText():
		return OutboundText{Text: evt.Text}, true
	case evt.Name == event.UserUpdate:
		return Roster(evt.Roster), true
	default:
		return nil, false
	}
}

// Roster never returns nil, an empty room is sent as [].
func Roster(views []domain.View) []RosterView {
	return lo.Map(views, func(v domain.View, _ int) RosterView {
		return RosterView{
			SocketID:    string(v.ConnectionID),
			Callsign:    v.Callsign,
			Name:        v.DisplayName,
			Admin:       v.IsModerator,
			IP:          v.NetworkAddress,
			ConnectedAt: v.ConnectedAt.UnixMilli(),
		}
	})
}

// NetworkAddress strips the port of a remote address.
// Every connection opened from the same host shares the result.
func NetworkAddress(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

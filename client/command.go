package main

import (
	"callsign-relay/infrastructure/wire"
	"fmt"
	"strconv"
	"strings"
)

// Request is one frame to send, built from a line typed by the user.
type Request struct {
	Event string
	Data  any
}

const usage = `/admin PASSWORD | /leave | /to CALLSIGN TEXT | /broadcast TEXT | /dm CALLSIGN TEXT |
/mute CALLSIGN MINUTES | /unmute CALLSIGN | /kick CALLSIGN | /quit
Quote callsigns made of several words: /mute "ALPHA BRAVO" 5`

var errQuit = fmt.Errorf("quit")

// ParseLine turns a typed line into a request. Lines not starting with '/' are chat.
func ParseLine(line string) (Request, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return Request{Event: wire.Chat, Data: wire.ChatPayload{Text: line}}, nil
	}

	command, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	switch command {
	case "quit":
		return Request{}, errQuit
	case "admin":
		return Request{Event: wire.BecomeAdmin, Data: wire.PasswordPayload{Password: rest}}, nil
	case "leave":
		return Request{Event: wire.LeaveAdmin}, nil
	case "to":
		to, text, err := splitCallsign(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Event: wire.Chat, Data: wire.ChatPayload{Text: text, To: to}}, nil
	case "broadcast":
		return Request{Event: wire.AdminBroadcast, Data: wire.TextPayload{Text: rest}}, nil
	case "dm":
		to, text, err := splitCallsign(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Event: wire.AdminDM, Data: wire.DMPayload{To: to, Text: text}}, nil
	case "mute":
		callsign, minutes, err := splitCallsign(rest)
		if err != nil {
			return Request{}, err
		}
		value, err := strconv.ParseFloat(minutes, 64)
		if err != nil {
			return Request{}, fmt.Errorf("minutes must be a number: %q", minutes)
		}
		return Request{Event: wire.AdminMuteUser, Data: wire.MutePayload{Callsign: callsign, Minutes: value}}, nil
	case "unmute":
		callsign, _, err := splitCallsign(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Event: wire.AdminUnmuteUser, Data: wire.CallsignPayload{Callsign: callsign}}, nil
	case "kick":
		callsign, _, err := splitCallsign(rest)
		if err != nil {
			return Request{}, err
		}
		return Request{Event: wire.AdminLogoutUser, Data: wire.CallsignPayload{Callsign: callsign}}, nil
	default:
		return Request{}, fmt.Errorf("unknown command /%s\n%s", command, usage)
	}
}

// splitCallsign reads a leading callsign, quoted when it holds several words.
func splitCallsign(s string) (callsign, rest string, err error) {
	if s == "" {
		return "", "", fmt.Errorf("a callsign is required\n%s", usage)
	}
	if strings.HasPrefix(s, `"`) {
		end := strings.Index(s[1:], `"`)
		if end < 0 {
			return "", "", fmt.Errorf("unterminated quote in %q", s)
		}
		return s[1 : end+1], strings.TrimSpace(s[end+2:]), nil
	}
	callsign, rest, _ = strings.Cut(s, " ")
	return callsign, strings.TrimSpace(rest), nil
}

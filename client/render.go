package main

import (
	"callsign-relay/infrastructure/wire"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gookit/color"
	"github.com/samber/lo"
)

var styles = map[string]color.Style{
	"system":       color.New(color.FgYellow),
	"chat":         color.New(color.FgWhite),
	"adminMessage": color.New(color.FgRed, color.OpBold),
	"adminDM":      color.New(color.FgMagenta, color.OpBold),
	"userUpdate":   color.New(color.FgCyan),
	"muted":        color.New(color.FgRed),
	"unmuted":      color.New(color.FgGreen),
	"forceLogout":  color.New(color.FgRed, color.OpBold),
}

// Render returns the line printed for an inbound frame, coloured when colours is set.
// ok is false for frames the terminal does not display.
func Render(frame wire.Frame, colours bool) (line string, ok bool) {
	line, ok = describe(frame)
	if !ok {
		return "", false
	}
	if style, found := styles[frame.Event]; found && colours {
		return style.Sprint(line), true
	}
	return line, true
}

func describe(frame wire.Frame) (string, bool) {
	switch frame.Event {
	case "system", "chat":
		return text(frame.Data), true
	case "adminMessage":
		return "[CONTROL] " + text(frame.Data), true
	case "adminDM":
		return "[CONTROL TO YOU] " + text(frame.Data), true
	case "userUpdate":
		var roster []wire.RosterView
		if err := json.Unmarshal(frame.Data, &roster); err != nil {
			return "", false
		}
		callsigns := lo.Map(roster, func(v wire.RosterView, _ int) string { return v.Callsign })
		return fmt.Sprintf("ON NET (%d): %s", len(callsigns), strings.Join(callsigns, ", ")), true
	case "muted":
		return "YOU ARE MUTED", true
	case "unmuted":
		return "YOU ARE UNMUTED", true
	case "forceLogout":
		return "LOGGED OUT", true
	default:
		return "", false
	}
}

func text(data json.RawMessage) string {
	var payload wire.OutboundText
	_ = json.Unmarshal(data, &payload)
	return payload.Text
}

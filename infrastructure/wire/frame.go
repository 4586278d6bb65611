package wire

import (
	"callsign-relay/domain/event"
	"encoding/json"
)

// AckEvent names the frame answering an inbound frame carrying an ack id.
const AckEvent = "ack"

// Frame is the JSON envelope of the plain WebSocket transport, both ways.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	Ack   *int            `json:"ack,omitempty"`
}

// EncodeEvent returns the frame of an outbound event.
func EncodeEvent(evt event.Event) ([]byte, error) {
	frame := Frame{Event: string(evt.Name)}
	if payload, ok := Outbound(evt); ok {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		frame.Data = data
	}
	return json.Marshal(frame)
}

// EncodeAck returns the frame answering the inbound frame numbered id.
func EncodeAck(id int, ack Ack) ([]byte, error) {
	data, err := json.Marshal(ack)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: AckEvent, Data: data, Ack: &id})
}

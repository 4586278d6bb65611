// Package wire holds what both transports share: inbound payload shapes and
// their validation, the ack shape and the outbound JSON views.
package wire

import (
	"callsign-relay/domain"
	"callsign-relay/errors"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Inbound event names.
const (
	Register        = "register"
	BecomeAdmin     = "becomeAdmin"
	LeaveAdmin      = "leaveAdmin"
	Chat            = "chat"
	AdminBroadcast  = "adminBroadcast"
	AdminDM         = "adminDM"
	AdminMuteUser   = "adminMuteUser"
	AdminUnmuteUser = "adminUnmuteUser"
	AdminLogoutUser = "adminLogoutUser"
)

type RegisterPayload struct {
	Callsign string `json:"callsign" validate:"maxtext"`
	Name     string `json:"name" validate:"maxtext"`
}

type PasswordPayload struct {
	Password string `json:"password" validate:"maxtext"`
}

type ChatPayload struct {
	Text string `json:"text" validate:"maxtext"`
	To   string `json:"to" validate:"maxtext"`
}

type TextPayload struct {
	Text string `json:"text" validate:"maxtext"`
}

type DMPayload struct {
	To   string `json:"to" validate:"maxtext"`
	Text string `json:"text" validate:"maxtext"`
}

type MutePayload struct {
	Callsign string  `json:"callsign" validate:"maxtext"`
	Minutes  float64 `json:"minutes" validate:"gte=0"`
}

type CallsignPayload struct {
	Callsign string `json:"callsign" validate:"maxtext"`
}

// Ack answers register and becomeAdmin.
type Ack struct {
	Ok  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func NewAck(err error) Ack {
	if err == nil {
		return Ack{Ok: true}
	}
	return Ack{Ok: false, Err: errors.WireMessage(err)}
}

// ExpectsAck reports whether the client waits for an acknowledgement of event.
func ExpectsAck(event string) bool {
	return event == Register || event == BecomeAdmin
}

// Decoder turns an inbound event into a command.
type Decoder struct {
	validate *validator.Validate
}

// NewDecoder rejects any string field longer than maxTextLength runes.
// A zero maxTextLength disables the bound.
func NewDecoder(maxTextLength int) (*Decoder, error) {
	validate := validator.New()
	err := validate.RegisterValidation("maxtext", func(fl validator.FieldLevel) bool {
		return maxTextLength <= 0 || utf8.RuneCountInString(fl.Field().String()) <= maxTextLength
	})
	if err != nil {
		return nil, err
	}
	return &Decoder{validate: validate}, nil
}

// Decode builds the command of event issued by connection id.
// reply is attached to commands expecting an ack.
func (d *Decoder) Decode(id domain.ConnectionID, address, event string, data json.RawMessage,
	reply domain.Reply) (domain.Command, error) {
	switch event {
	case Register:
		var p RegisterPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.RegisterCommand{
			ConnectionID: id, Callsign: p.Callsign, DisplayName: p.Name, NetworkAddress: address, Reply: reply,
		}, nil
	case BecomeAdmin:
		var p PasswordPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.BecomeAdminCommand{ConnectionID: id, Password: p.Password, Reply: reply}, nil
	case LeaveAdmin:
		return domain.LeaveAdminCommand{ConnectionID: id}, nil
	case Chat:
		var p ChatPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.ChatCommand{ConnectionID: id, Text: p.Text, To: p.To}, nil
	case AdminBroadcast:
		var p TextPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.AdminBroadcastCommand{ConnectionID: id, Text: p.Text}, nil
	case AdminDM:
		var p DMPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.AdminDMCommand{ConnectionID: id, To: p.To, Text: p.Text}, nil
	case AdminMuteUser:
		var p MutePayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.AdminMuteCommand{ConnectionID: id, Callsign: p.Callsign, Minutes: p.Minutes}, nil
	case AdminUnmuteUser:
		var p CallsignPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.AdminUnmuteCommand{ConnectionID: id, Callsign: p.Callsign}, nil
	case AdminLogoutUser:
		var p CallsignPayload
		if err := d.decode(data, &p); err != nil {
			return nil, err
		}
		return domain.AdminLogoutCommand{ConnectionID: id, Callsign: p.Callsign}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, event)
	}
}

// decode accepts a missing payload as the zero value.
func (d *Decoder) decode(data json.RawMessage, v any) error {
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
		}
	}
	if err := d.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return nil
}

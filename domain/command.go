package domain

// Command is an inbound event issued by one connection.
type Command interface {
	Connection() ConnectionID
}

// Reply carries the acknowledgement of a command expecting one.
// A nil error is a positive ack.
type Reply chan error

type RegisterCommand struct {
	ConnectionID   ConnectionID
	Callsign       string
	DisplayName    string
	NetworkAddress string
	Reply          Reply
}

func (c RegisterCommand) Connection() ConnectionID { return c.ConnectionID }

// BecomeAdminCommand asks for the CONTROL role. The gateway checks Password
// and clears it; the session only trusts Verified.
type BecomeAdminCommand struct {
	ConnectionID ConnectionID
	Password     string
	Verified     bool
	Reply        Reply
}

func (c BecomeAdminCommand) Connection() ConnectionID { return c.ConnectionID }

type LeaveAdminCommand struct {
	ConnectionID ConnectionID
}

func (c LeaveAdminCommand) Connection() ConnectionID { return c.ConnectionID }

// ChatCommand posts a message. To is a display label, delivery is always room wide.
type ChatCommand struct {
	ConnectionID ConnectionID
	Text         string
	To           string
}

func (c ChatCommand) Connection() ConnectionID { return c.ConnectionID }

type AdminBroadcastCommand struct {
	ConnectionID ConnectionID
	Text         string
}

func (c AdminBroadcastCommand) Connection() ConnectionID { return c.ConnectionID }

type AdminDMCommand struct {
	ConnectionID ConnectionID
	To           string
	Text         string
}

func (c AdminDMCommand) Connection() ConnectionID { return c.ConnectionID }

type AdminMuteCommand struct {
	ConnectionID ConnectionID
	Callsign     string
	Minutes      float64
}

func (c AdminMuteCommand) Connection() ConnectionID { return c.ConnectionID }

type AdminUnmuteCommand struct {
	ConnectionID ConnectionID
	Callsign     string
}

func (c AdminUnmuteCommand) Connection() ConnectionID { return c.ConnectionID }

type AdminLogoutCommand struct {
	ConnectionID ConnectionID
	Callsign     string
}

func (c AdminLogoutCommand) Connection() ConnectionID { return c.ConnectionID }

// DisconnectCommand is issued by the transport when a connection is lost.
type DisconnectCommand struct {
	ConnectionID ConnectionID
}

func (c DisconnectCommand) Connection() ConnectionID { return c.ConnectionID }

// Acknowledge sends err on the reply channel if the command expects an ack.
// The channel is buffered by the caller so this never blocks.
func Acknowledge(cmd Command, err error) {
	var reply Reply
	switch c := cmd.(type) {
	case RegisterCommand:
		reply = c.Reply
	case BecomeAdminCommand:
		reply = c.Reply
	}
	if reply == nil {
		return
	}
	select {
	case reply <- err:
	default:
	}
}

// NewReply returns a reply channel that never blocks its single writer.
func NewReply() Reply {
	return make(Reply, 1)
}

package event

import (
	"callsign-relay/domain"
	"time"
)

// Name is the wire name of an outbound notification.
type Name string

const (
	System       Name = "system"
	Chat         Name = "chat"
	AdminMessage Name = "adminMessage"
	AdminDM      Name = "adminDM"
	UserUpdate   Name = "userUpdate"
	Muted        Name = "muted"
	Unmuted      Name = "unmuted"
	ForceLogout  Name = "forceLogout"
)

// Audience selects who receives an event.
type Audience int

const (
	Everyone Audience = iota
	One
)

func (a Audience) String() string {
	if a == One {
		return "one"
	}
	return "everyone"
}

// Event is a notification produced by the session protocol.
// Text is set for text carrying events, Roster for UserUpdate.
type Event struct {
	Name     Name
	Audience Audience
	Target   domain.ConnectionID
	Text     string
	Roster   []domain.View
	At       time.Time
}

// HasText reports whether the event carries a {text} payload on the wire.
func (e Event) HasText() bool {
	switch e.Name {
	case System, Chat, AdminMessage, AdminDM:
		return true
	default:
		return false
	}
}

func ToEveryone(name Name, text string, at time.Time) Event {
	return Event{Name: name, Audience: Everyone, Text: text, At: at}
}

func ToOne(target domain.ConnectionID, name Name, text string, at time.Time) Event {
	return Event{Name: name, Audience: One, Target: target, Text: text, At: at}
}

func Roster(views []domain.View, at time.Time) Event {
	return Event{Name: UserUpdate, Audience: Everyone, Roster: views, At: at}
}

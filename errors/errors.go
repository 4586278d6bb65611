package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidVocabulary  = fmt.Errorf("text is not restricted vocabulary")
	ErrReservedCallsign   = fmt.Errorf("callsign contains the reserved token")
	ErrCallsignTaken      = fmt.Errorf("callsign already in use")
	ErrBadCredentials     = fmt.Errorf("bad moderator password")
	ErrNotRegistered      = fmt.Errorf("connection is not registered")
	ErrAlreadyRegistered  = fmt.Errorf("connection is already registered")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
	ErrBufferFull         = fmt.Errorf("connection buffer exceeded")
	ErrNoModeratorSecret  = fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
	ErrInvalidHashFormat  = fmt.Errorf("invalid hash format")
	ErrUnknownEvent       = fmt.Errorf("unknown event")
	ErrInvalidPayload     = fmt.Errorf("invalid payload")
	ErrOrchestratorClosed = fmt.Errorf("orchestrator is stopped")
)

// wireMessages are the strings displayed by the chat client next to a failed ack.
var wireMessages = map[error]string{
	ErrInvalidVocabulary: "NATO ONLY",
	ErrReservedCallsign:  "CONTROL RESERVED",
	ErrCallsignTaken:     "CALLSIGN IN USE",
	ErrBadCredentials:    "BAD PASSWORD",
	ErrNotRegistered:     "NOT REGISTERED",
	ErrAlreadyRegistered: "ALREADY REGISTERED",
	ErrInvalidPayload:    "INVALID PAYLOAD",
}

// WireMessage returns the client facing message of err.
// Errors outside the ack taxonomy collapse to a generic message.
func WireMessage(err error) string {
	for target, msg := range wireMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return "SERVER ERROR"
}

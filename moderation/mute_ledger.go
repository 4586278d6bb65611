package moderation

import (
	"callsign-relay/domain"
	"math"
	"time"
)

// MuteLedger maps a network address to the instant its mute ends.
// Expired entries are ignored on read and stay until overwritten or unmuted.
// It is not safe for concurrent use; the session worker owns it.
type MuteLedger struct {
	clock   domain.Clock
	entries map[string]time.Time
}

func NewMuteLedger(clock domain.Clock) *MuteLedger {
	return &MuteLedger{clock: clock, entries: make(map[string]time.Time)}
}

// Mute silences address for the given minutes, replacing any previous entry.
// Durations beyond what time.Duration holds are capped at about 292 years.
func (l *MuteLedger) Mute(address string, minutes float64) time.Time {
	expiresAt := l.clock.Now().Add(muteDuration(minutes))
	l.entries[address] = expiresAt
	return expiresAt
}

func muteDuration(minutes float64) time.Duration {
	nanos := minutes * float64(time.Minute)
	switch {
	case math.IsNaN(nanos) || nanos <= 0:
		return 0
	case nanos >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	default:
		return time.Duration(nanos)
	}
}

func (l *MuteLedger) Unmute(address string) {
	delete(l.entries, address)
}

// IsMuted is true while the entry of address expires strictly after now.
func (l *MuteLedger) IsMuted(address string) bool {
	expiresAt, ok := l.entries[address]
	return ok && expiresAt.After(l.clock.Now())
}

// ExpiresAt returns the stored expiry of address, live or stale.
func (l *MuteLedger) ExpiresAt(address string) (time.Time, bool) {
	expiresAt, ok := l.entries[address]
	return expiresAt, ok
}

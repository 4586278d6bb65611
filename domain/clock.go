package domain

import "time"

// Clock abstracts the current instant so mute expiry can be simulated.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

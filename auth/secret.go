package auth

import (
	"callsign-relay/errors"
	"crypto/subtle"
	"strings"
)

// ModeratorSecret is the single shared password granting the CONTROL role.
type ModeratorSecret struct {
	plain  string
	hashed string
}

// NewModeratorSecret accepts either a plain password or an encoded argon2id hash.
// The hash wins when both are given.
func NewModeratorSecret(plain, hashed string) (ModeratorSecret, error) {
	switch {
	case hashed != "":
		if !strings.HasPrefix(hashed, hashPrefix) {
			return ModeratorSecret{}, errors.ErrInvalidHashFormat
		}
		return ModeratorSecret{hashed: hashed}, nil
	case plain != "":
		return ModeratorSecret{plain: plain}, nil
	default:
		return ModeratorSecret{}, errors.ErrNoModeratorSecret
	}
}

// Verify reports whether password matches the secret.
func (s ModeratorSecret) Verify(password string) bool {
	if s.hashed != "" {
		ok, err := ComparePassword(password, s.hashed)
		return err == nil && ok
	}
	if s.plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.plain)) == 1
}

// Package session holds the participant registry and the protocol driving
// registration, elevation, chat routing and moderation.
// Nothing in this package is safe for concurrent use: a single worker owns it.
package session

import (
	"callsign-relay/domain"
	"callsign-relay/errors"
	"callsign-relay/moderation"

	"github.com/samber/lo"
)

// Registry is the ordered list of registered participants.
// Callsigns are unique and compared as stored, without case folding.
type Registry struct {
	participants []*domain.Participant
	reserved     moderation.ReservedMatcher
	clock        domain.Clock
}

func NewRegistry(reserved moderation.ReservedMatcher, clock domain.Clock) *Registry {
	return &Registry{reserved: reserved, clock: clock}
}

// Register validates and appends a new participant.
// Checks run in order: vocabulary, reserved token, uniqueness.
func (r *Registry) Register(id domain.ConnectionID, callsign, displayName, address string) (domain.Participant, error) {
	if !domain.IsRestrictedVocabulary(callsign) || !domain.IsRestrictedVocabulary(displayName) {
		return domain.Participant{}, errors.ErrInvalidVocabulary
	}
	if r.reserved.Contains(callsign) {
		return domain.Participant{}, errors.ErrReservedCallsign
	}
	if _, taken := r.FindByCallsign(callsign); taken {
		return domain.Participant{}, errors.ErrCallsignTaken
	}

	p := &domain.Participant{
		ConnectionID:   id,
		Callsign:       callsign,
		DisplayName:    displayName,
		NetworkAddress: address,
		ConnectedAt:    r.clock.Now(),
	}
	r.participants = append(r.participants, p)
	return *p, nil
}

// FindByConnection returns the live record, mutations are visible to the registry.
func (r *Registry) FindByConnection(id domain.ConnectionID) (*domain.Participant, bool) {
	return lo.Find(r.participants, func(p *domain.Participant) bool {
		return p.ConnectionID == id
	})
}

func (r *Registry) FindByCallsign(callsign string) (*domain.Participant, bool) {
	return lo.Find(r.participants, func(p *domain.Participant) bool {
		return p.Callsign == callsign
	})
}

// Remove deletes the participant of id, if any.
func (r *Registry) Remove(id domain.ConnectionID) {
	r.participants = lo.Reject(r.participants, func(p *domain.Participant, _ int) bool {
		return p.ConnectionID == id
	})
}

// Snapshot returns the public roster in registration order.
func (r *Registry) Snapshot() []domain.View {
	return lo.Map(r.participants, func(p *domain.Participant, _ int) domain.View {
		return p.View()
	})
}

func (r *Registry) Len() int { return len(r.participants) }

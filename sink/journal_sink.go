package sink

import (
	"callsign-relay/contract"
	"callsign-relay/domain"
	"callsign-relay/domain/event"
	"callsign-relay/repositories"
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ contract.EventSink = JournalSink{}

// JournalSink records every outbound event, including those whose target is gone.
type JournalSink struct {
	repository repositories.IJournalRepository
}

func NewJournalSink(repository repositories.IJournalRepository) JournalSink {
	return JournalSink{repository: repository}
}

func (j JournalSink) Consume(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return j.repository.StoreEntry(toJournalEntry(e))
}

func toJournalEntry(e event.Event) repositories.JournalEntry {
	return repositories.JournalEntry{
		ID:       uuid.New(),
		Name:     string(e.Name),
		Audience: e.Audience.String(),
		Target:   string(e.Target),
		Text:     e.Text,
		Callsigns: lo.Map(e.Roster, func(v domain.View, _ int) string {
			return v.Callsign
		}),
		At: e.At,
	}
}

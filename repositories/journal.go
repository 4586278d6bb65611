//go:generate go run go.uber.org/mock/mockgen -source=journal.go -destination=../mocks/mock_journal_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const journalPrefix = "evt:"

type IJournalRepository interface {
	StoreEntry(entry JournalEntry) error
	GetEntries(cursor *string) ([]JournalEntry, *string, error)
}

// JournalEntry is one outbound event as it was delivered.
type JournalEntry struct {
	ID        uuid.UUID
	Name      string
	Audience  string
	Target    string
	Text      string
	Callsigns []string
	At        time.Time
}

type JournalRepository struct {
	db           *badger.DB
	log          *slog.Logger
	limitEntries *int
}

func NewJournalRepository(db *badger.DB, log *slog.Logger, limitEntries *int) JournalRepository {
	return JournalRepository{db: db, log: log, limitEntries: limitEntries}
}

// StoreEntry persists an entry in BadgerDB.
// The key is formatted as "evt:{timestamp_padded}:{uuid}":
// the 19 digits padding keeps lexicographical order chronological,
// the uuid separates two entries stored at the same nanosecond.
func (j JournalRepository) StoreEntry(entry JournalEntry) error {
	key := fmt.Sprintf("%s%019d:%s", journalPrefix, entry.At.UnixNano(), entry.ID)
	value, err := fromJournalEntry(entry)
	if err != nil {
		return err
	}
	bytes, err := proto.Marshal(value)
	if err != nil {
		return err
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetEntries returns entries from the newest to the oldest.
// A nil cursor starts from the newest entry, otherwise from the entry after cursor.
// The returned cursor points to the last entry read.
func (j JournalRepository) GetEntries(cursor *string) ([]JournalEntry, *string, error) {
	var values [][]byte
	var lastKey string
	prefix := []byte(journalPrefix)

	err := j.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			seekKey = append(append([]byte(nil), prefix...), []byte("9999999999999999999")...)
		default:
			seekKey = append(append([]byte(nil), prefix...), []byte(*cursor)...)
		}

		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if j.limitEntries != nil && len(values) == *j.limitEntries {
				j.log.Debug(fmt.Sprintf("Maximum of %d entries reached", *j.limitEntries))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			values = append(values, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	entries := make([]JournalEntry, 0, len(values))
	for _, b := range values {
		var value structpb.Struct
		if err = proto.Unmarshal(b, &value); err != nil {
			return nil, nil, err
		}
		entry, err := toJournalEntry(&value)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, entry)
	}
	return entries, &lastKey, nil
}

func fromJournalEntry(entry JournalEntry) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":        entry.ID.String(),
		"name":      entry.Name,
		"audience":  entry.Audience,
		"target":    entry.Target,
		"text":      entry.Text,
		"callsigns": lo.ToAnySlice(entry.Callsigns),
		"at":        entry.At.UTC().Format(time.RFC3339Nano),
	})
}

func toJournalEntry(value *structpb.Struct) (JournalEntry, error) {
	fields := value.GetFields()
	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return JournalEntry{}, err
	}
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return JournalEntry{}, err
	}
	var callsigns []string
	for _, v := range fields["callsigns"].GetListValue().GetValues() {
		callsigns = append(callsigns, v.GetStringValue())
	}
	return JournalEntry{
		ID:        id,
		Name:      fields["name"].GetStringValue(),
		Audience:  fields["audience"].GetStringValue(),
		Target:    fields["target"].GetStringValue(),
		Text:      fields["text"].GetStringValue(),
		Callsigns: callsigns,
		At:        at,
	}, nil
}

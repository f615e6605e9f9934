package repositories

import (
	"chat-collect/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

const (
	eventPrefix = "evt:"
	roomPrefix  = "room:"
)

type ChatroomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatroomRepository(db *badger.DB, log *slog.Logger) ChatroomRepository {
	return ChatroomRepository{db: db, log: log}
}

// StoreEvent persists an event in BadgerDB.
// The key is formatted as "evt:{chatroom}:{timestamp}:{uuid}". Event
// timestamps are fixed width so a prefix scan returns them in order, and the
// uuid keeps two events of the same microsecond apart.
func (r ChatroomRepository) StoreEvent(chatroomID string, evt domain.Event) error {
	key := fmt.Sprintf("%s%s:%s:%s", eventPrefix, chatroomID, evt.Timestamp, evt.ID)
	bytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetEvents returns every stored event of a chatroom, oldest first.
func (r ChatroomRepository) GetEvents(chatroomID string) ([]domain.Event, error) {
	var events []domain.Event
	prefix := []byte(fmt.Sprintf("%s%s:", eventPrefix, chatroomID))
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var evt domain.Event
				if err := json.Unmarshal(value, &evt); err != nil {
					return err
				}
				events = append(events, evt)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return events, err
}

// StoreReleased persists the summary of a released chatroom under
// "room:{released_at_padded}:{chatroom}" so that released rooms sort by
// release time.
func (r ChatroomRepository) StoreReleased(summary domain.ChatroomSummary) error {
	key := fmt.Sprintf("%s%019d:%s", roomPrefix, summary.ReleasedAt.UnixNano(), summary.ID)
	bytes, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetReleased returns at most limit released chatrooms, the most recently
// released last. A limit <= 0 returns all of them.
func (r ChatroomRepository) GetReleased(limit int) ([]domain.ChatroomSummary, error) {
	var summaries []domain.ChatroomSummary
	prefix := []byte(roomPrefix)
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Start after the newest possible key and walk back in time
		seekKey := append([]byte(roomPrefix), []byte("9999999999999999999;")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(summaries) == limit {
				r.log.Debug(fmt.Sprintf("Maximum of %d released chatrooms reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var summary domain.ChatroomSummary
				if err := json.Unmarshal(value, &summary); err != nil {
					return err
				}
				summaries = append(summaries, summary)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Reverse(summaries)
	return summaries, nil
}

// Package domain contains the core concepts of the chat collection system:
// users, chatrooms and the events exchanged inside them.
// No network, storage or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// MsgEvent is a chat message typed by a participant.
	MsgEvent EventType = "msg"
	// SysEvent is a notice produced by the server, e.g. the partner left.
	SysEvent EventType = "sys"
)

// TimestampLayout is fixed width so that comparing two timestamps as strings
// gives the same answer as comparing the instants.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Labels used in place of user ids in everything a participant receives.
const (
	Self  = "self"
	Other = "other"
)

// Event represents an immutable chat event.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      EventType `json:"type"`
	From      string    `json:"from"`
	Timestamp string    `json:"timestamp"`
	Body      string    `json:"body"`
}

func (e Event) IsMessage() bool {
	return e.Type == MsgEvent
}

// At parses the event timestamp. A malformed timestamp yields the zero time.
func (e Event) At() time.Time {
	t, err := ParseTimestamp(e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts any number of fractional digits, as produced by
// other clients or older archives.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC)
}

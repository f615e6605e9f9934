package domain

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MaxUsers is the size of a chatroom: one initiator and one partner.
const MaxUsers = 2

// Chatroom is a two-party conversation.
// All methods are safe for concurrent use.
// Every mutation moves Modified strictly forward and wakes the goroutines
// waiting on Changed.
type Chatroom struct {
	mu sync.Mutex

	ID           string
	ExperimentID string
	Created      time.Time

	modified  time.Time
	users     []string
	initiator string
	partner   string
	closed    bool
	events    []Event
	polls     map[string]int
	lastSeen  map[string]time.Time
	changed   chan struct{}
}

func NewChatroom(id, experimentID, initiator string, now time.Time) *Chatroom {
	c := &Chatroom{
		ID:           id,
		ExperimentID: experimentID,
		Created:      now.UTC(),
		modified:     now.UTC(),
		initiator:    initiator,
		polls:        make(map[string]int),
		lastSeen:     make(map[string]time.Time),
		changed:      make(chan struct{}),
	}
	if initiator != "" {
		c.AddUser(initiator, now)
	}
	return c
}

// tick returns the next modification instant, never equal to the previous one.
func (c *Chatroom) tick(now time.Time) time.Time {
	now = now.UTC().Truncate(time.Microsecond)
	if !now.After(c.modified) {
		now = c.modified.Add(time.Microsecond)
	}
	c.modified = now
	return now
}

func (c *Chatroom) notify() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Changed returns a channel closed at the next mutation.
func (c *Chatroom) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func (c *Chatroom) AddUser(userID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.users, userID) {
		return
	}
	at := c.tick(now)
	c.users = append(c.users, userID)
	if len(c.users) == MaxUsers {
		c.closed = true
		c.partner = userID
	}
	c.lastSeen[userID] = at
	c.polls[userID] = 0
	c.notify()
}

// RemoveUser reports whether the user was a member.
func (c *Chatroom) RemoveUser(userID string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.Index(c.users, userID)
	if i < 0 {
		return false
	}
	c.users = slices.Delete(c.users, i, i+1)
	delete(c.lastSeen, userID)
	c.tick(now)
	c.notify()
	return true
}

// AddEvent stamps and appends an event sent by a member.
func (c *Chatroom) AddEvent(typ EventType, from, body string, now time.Time) Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.tick(now)
	evt := Event{
		ID:        uuid.New(),
		Type:      typ,
		From:      from,
		Timestamp: FormatTimestamp(at),
		Body:      body,
	}
	c.events = append(c.events, evt)
	if _, ok := c.lastSeen[from]; ok {
		c.lastSeen[from] = at
	}
	c.notify()
	return evt
}

// HasChanged reports whether the chatroom was modified after the given
// timestamp. An empty timestamp means the caller has seen nothing yet.
func (c *Chatroom) HasChanged(since string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return since == "" || FormatTimestamp(c.modified) > since
}

// HasPolled records a poll request of a member.
func (c *Chatroom) HasPolled(userID string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.lastSeen[userID]; !ok {
		return
	}
	c.polls[userID]++
	c.lastSeen[userID] = now.UTC()
}

func (c *Chatroom) Contains(userID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Contains(c.users, userID)
}

func (c *Chatroom) Users() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.users)
}

func (c *Chatroom) Initiator() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initiator
}

func (c *Chatroom) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Chatroom) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.users) == 0
}

// LastSeen returns the instant of the last poll, post or join of a member.
func (c *Chatroom) LastSeen(userID string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.lastSeen[userID]
	return t, ok
}

// Snapshot is the chatroom as seen by one participant. Events are those
// newer than since; user ids are replaced by Self and Other.
func (c *Chatroom) Snapshot(viewer, since string) ChatroomView {
	c.mu.Lock()
	defer c.mu.Unlock()
	relative := func(id string) string {
		if id == viewer {
			return Self
		}
		return Other
	}
	latest := lo.Filter(c.events, func(e Event, _ int) bool {
		return since == "" || e.Timestamp > since
	})
	return ChatroomView{
		ID:           c.ID,
		ExperimentID: c.ExperimentID,
		Users:        lo.Map(c.users, func(id string, _ int) string { return relative(id) }),
		Created:      FormatTimestamp(c.Created),
		Modified:     FormatTimestamp(c.modified),
		Closed:       c.closed,
		IsFirstUser:  c.initiator == viewer,
		LatestEvents: lo.Map(latest, func(e Event, _ int) Event {
			e.From = relative(e.From)
			return e
		}),
	}
}

func (c *Chatroom) Summary() ChatroomSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChatroomSummary{
		ID:           c.ID,
		ExperimentID: c.ExperimentID,
		Users:        slices.Clone(c.users),
		Created:      c.Created,
		Modified:     c.modified,
		Initiator:    c.initiator,
		Closed:       c.closed,
		Events:       len(c.events),
		Messages:     lo.CountBy(c.events, func(e Event) bool { return e.IsMessage() }),
		PollRequests: lo.Sum(lo.Values(c.polls)),
	}
}

// Dialog is the archivable content of the chatroom.
func (c *Chatroom) Dialog(released time.Time) Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Dialog{
		ID:           c.ID,
		ExperimentID: c.ExperimentID,
		Initiator:    c.initiator,
		Partner:      c.partner,
		Created:      c.Created,
		Released:     released.UTC(),
		Events:       slices.Clone(c.events),
	}
}

// Package transcript is the client side model of a chatroom: the merged log
// of events received from the server, the conversation length heuristics and
// the rendering of entries.
package transcript

import (
	"chat-collect/domain"
	"chat-collect/errors"
	"slices"
	"strings"
)

// Transcript is the ordered log of events of one chatroom as seen by one
// participant. It is not safe for concurrent use.
type Transcript struct {
	events []domain.Event
}

func New() *Transcript {
	return &Transcript{}
}

// Merge inserts the latest events received from the server at their sorted
// position. An event with the same timestamp and sender as a known one is
// skipped. It returns the events that were actually added.
func (t *Transcript) Merge(latest []domain.Event) []domain.Event {
	if len(latest) == 0 {
		return nil
	}
	sorted := slices.Clone(latest)
	slices.SortStableFunc(sorted, func(a, b domain.Event) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})

	var added []domain.Event
	j := 0
	for _, evt := range sorted {
		for j < len(t.events) && t.events[j].Timestamp < evt.Timestamp {
			j++
		}
		if j < len(t.events) && t.events[j].Timestamp == evt.Timestamp && t.events[j].From == evt.From {
			j++
			continue
		}
		t.events = slices.Insert(t.events, j, evt)
		added = append(added, evt)
		j++
	}
	return added
}

func (t *Transcript) Events() []domain.Event {
	return slices.Clone(t.events)
}

func (t *Transcript) Len() int {
	return len(t.events)
}

// CountFor counts the chat messages sent by from (domain.Self or domain.Other).
func (t *Transcript) CountFor(from string) int {
	n := 0
	for _, evt := range t.events {
		if evt.IsMessage() && evt.From == from {
			n++
		}
	}
	return n
}

// CanSend refuses a new message while the last event is our own message.
func (t *Transcript) CanSend() error {
	if len(t.events) == 0 {
		return nil
	}
	last := t.events[len(t.events)-1]
	if last.IsMessage() && last.From == domain.Self {
		return errors.ErrAwaitingReply
	}
	return nil
}

func (t *Transcript) Progress(low, high int) Progress {
	return Evaluate(t.CountFor(domain.Self), t.CountFor(domain.Other), low, high)
}

package domain

import (
	"time"

	"github.com/samber/lo"
)

// ChatroomView is what a participant receives from poll, post and leave.
type ChatroomView struct {
	ID           string   `json:"id"`
	ExperimentID string   `json:"experimentId"`
	Users        []string `json:"users"`
	Created      string   `json:"created"`
	Modified     string   `json:"modified"`
	Closed       bool     `json:"closed"`
	IsFirstUser  bool     `json:"isFirstUser"`
	LatestEvents []Event  `json:"latestEvents"`
}

// JoinInfo carries everything a client needs to run a chat session.
type JoinInfo struct {
	ClientTabID     string        `json:"clientTabId"`
	ChatroomID      string        `json:"chatroomId"`
	ExperimentID    string        `json:"experimentId"`
	IsFirstUser     bool          `json:"isFirstUser"`
	MsgCountLow     int           `json:"msgCountLow"`
	MsgCountHigh    int           `json:"msgCountHigh"`
	PollInterval    time.Duration `json:"pollInterval"`
	DelayForPartner time.Duration `json:"delayForPartner"`
}

// ChatroomSummary is the admin view of a chatroom, active or released.
type ChatroomSummary struct {
	ID           string    `json:"id"`
	ExperimentID string    `json:"experimentId"`
	Users        []string  `json:"users"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Initiator    string    `json:"initiator"`
	Closed       bool      `json:"closed"`
	Events       int       `json:"events"`
	Messages     int       `json:"messages"`
	PollRequests int       `json:"pollRequests"`
	ReleasedAt   time.Time `json:"releasedAt,omitempty"`
}

// Dialog is a released chatroom ready to be archived.
type Dialog struct {
	ID           string
	ExperimentID string
	Initiator    string
	Partner      string
	Created      time.Time
	Released     time.Time
	Events       []Event
}

func (d Dialog) Messages() []Event {
	return lo.Filter(d.Events, func(e Event, _ int) bool { return e.IsMessage() })
}

// Speaker returns 1 for the initiator and 2 for the partner.
func (d Dialog) Speaker(userID string) int {
	if userID == d.Initiator {
		return 1
	}
	return 2
}

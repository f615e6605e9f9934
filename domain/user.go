package domain

// User is one browser tab of one session. Two tabs of the same session are
// two users, but only one of them may chat at a time.
type User struct {
	ID        string
	SessionID string
	TabID     string
	Attribs   map[string]string
}

func NewUser(sessionID, tabID string, attribs map[string]string) User {
	return User{
		ID:        UserID(sessionID, tabID),
		SessionID: sessionID,
		TabID:     tabID,
		Attribs:   attribs,
	}
}

func UserID(sessionID, tabID string) string {
	return sessionID + "_" + tabID
}

// Matcher decides whether a newcomer may be paired with the user already
// waiting in a chatroom.
type Matcher interface {
	Matches(newcomer, occupant User) bool
}

// AnyMatcher pairs anybody with anybody.
type AnyMatcher struct{}

func (AnyMatcher) Matches(User, User) bool { return true }

// AttributeMatcher pairs users that agree on every listed attribute.
type AttributeMatcher struct {
	Keys []string
}

func (m AttributeMatcher) Matches(newcomer, occupant User) bool {
	for _, key := range m.Keys {
		if newcomer.Attribs[key] != occupant.Attribs[key] {
			return false
		}
	}
	return true
}

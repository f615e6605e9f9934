package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChatroom_SecondUserClosesRoom(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// Given a chatroom created by Alice
	room := NewChatroom("room-1", "exp", "alice", now)
	req.False(room.IsClosed())
	req.Equal([]string{"alice"}, room.Users())

	// When Bob joins
	room.AddUser("bob", now.Add(time.Second))

	// Then the room is closed to newcomers
	req.True(room.IsClosed())
	req.Equal([]string{"alice", "bob"}, room.Users())
	req.Equal("alice", room.Initiator())
	req.Equal("bob", room.Dialog(now).Partner)
}

func TestChatroom_TimestampsStrictlyIncrease(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	room := NewChatroom("room-1", "exp", "alice", now)
	room.AddUser("bob", now)

	// When two events are stamped with the same wall clock
	first := room.AddEvent(MsgEvent, "alice", "hello", now)
	second := room.AddEvent(MsgEvent, "bob", "hi", now)

	// Then their timestamps still sort in insertion order
	req.Less(first.Timestamp, second.Timestamp)
	req.Equal("2024-03-01T10:00:00.000004", second.Timestamp)
}

func TestChatroom_HasChanged(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	room := NewChatroom("room-1", "exp", "alice", now)
	seen := room.Snapshot("alice", "").Modified

	req.True(room.HasChanged(""))
	req.False(room.HasChanged(seen))

	room.AddEvent(MsgEvent, "alice", "hello", now.Add(time.Second))
	req.True(room.HasChanged(seen))
}

func TestChatroom_ChangedIsClosedOnMutation(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewChatroom("room-1", "exp", "alice", now)
	changed := room.Changed()

	select {
	case <-changed:
		req.Fail("channel closed before any mutation")
	default:
	}

	room.AddUser("bob", now)

	select {
	case <-changed:
	default:
		req.Fail("channel not closed after mutation")
	}
	req.NotEqual(changed, room.Changed())
}

func TestChatroom_SnapshotIsRelativeToViewer(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	room := NewChatroom("room-1", "exp", "alice", now)
	room.AddUser("bob", now.Add(time.Second))
	hello := room.AddEvent(MsgEvent, "alice", "hello", now.Add(2*time.Second))
	room.AddEvent(MsgEvent, "bob", "hi", now.Add(3*time.Second))

	// When Bob looks at the room
	view := room.Snapshot("bob", "")

	// Then ids are hidden behind labels
	req.Equal([]string{Other, Self}, view.Users)
	req.False(view.IsFirstUser)
	req.Len(view.LatestEvents, 2)
	req.Equal(Other, view.LatestEvents[0].From)
	req.Equal(Self, view.LatestEvents[1].From)

	// And only newer events are sent after a timestamp
	view = room.Snapshot("alice", hello.Timestamp)
	req.True(view.IsFirstUser)
	req.Len(view.LatestEvents, 1)
	req.Equal("hi", view.LatestEvents[0].Body)
	req.Equal(Other, view.LatestEvents[0].From)
}

func TestChatroom_RemoveUser(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewChatroom("room-1", "exp", "alice", now)
	room.AddUser("bob", now)

	req.True(room.RemoveUser("alice", now))
	req.False(room.RemoveUser("alice", now))
	req.Equal([]string{"bob"}, room.Users())
	req.True(room.IsClosed(), "a room never reopens")

	_, ok := room.LastSeen("alice")
	req.False(ok)

	req.True(room.RemoveUser("bob", now))
	req.True(room.IsEmpty())
}

func TestChatroom_PollsAreCountedForMembersOnly(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	room := NewChatroom("room-1", "exp", "alice", now)

	room.HasPolled("alice", now.Add(time.Minute))
	room.HasPolled("alice", now.Add(2*time.Minute))
	room.HasPolled("mallory", now.Add(2*time.Minute))

	req.Equal(2, room.Summary().PollRequests)
	seen, ok := room.LastSeen("alice")
	req.True(ok)
	req.Equal(now.Add(2*time.Minute), seen)
}

func TestChatroom_Summary(t *testing.T) {
	req := require.New(t)
	now := time.Now()
	room := NewChatroom("room-1", "exp", "alice", now)
	room.AddUser("bob", now)
	room.AddEvent(MsgEvent, "alice", "hello", now)
	room.AddEvent(SysEvent, "bob", "left", now)

	summary := room.Summary()
	req.Equal("room-1", summary.ID)
	req.Equal(2, summary.Events)
	req.Equal(1, summary.Messages)
	req.True(summary.Closed)
}

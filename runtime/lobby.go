// Package runtime holds the in-memory state of the chat server: the lobby of
// active chatrooms and the users waiting in them.
package runtime

import (
	"chat-collect/contract"
	"chat-collect/domain"
	"chat-collect/errors"
	"chat-collect/observability"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// LeftBody is the body of the sys event appended when a member leaves.
const LeftBody = "left"

type Config struct {
	ExperimentID    string
	MsgCountLow     int
	MsgCountHigh    int
	PollInterval    time.Duration
	PollTimeout     time.Duration
	DelayForPartner time.Duration
	UserTimeout     time.Duration
	ReleasedLimit   int
}

// Lobby owns every active chatroom.
// Join, Leave and Reap change the set of rooms and take the write lock.
// Post holds the read lock until its event is added so that a room is never
// released in between. Poll only looks a room up and then relies on the
// chatroom's own lock.
type Lobby struct {
	mu      sync.RWMutex
	log     *slog.Logger
	cfg     Config
	matcher domain.Matcher
	censor  contract.Censor
	repo    contract.ChatroomRepository
	monitor *observability.MonitoringManager
	archive chan<- domain.Dialog
	now     func() time.Time

	rooms     []*domain.Chatroom // active, oldest first
	chatrooms map[string]*domain.Chatroom
	userRoom  map[string]string
	users     map[string]domain.User
	released  []domain.ChatroomSummary
}

func NewLobby(log *slog.Logger, cfg Config, repo contract.ChatroomRepository, monitor *observability.MonitoringManager) *Lobby {
	return &Lobby{
		log:       log,
		cfg:       cfg,
		matcher:   domain.AnyMatcher{},
		repo:      repo,
		monitor:   monitor,
		now:       time.Now,
		chatrooms: make(map[string]*domain.Chatroom),
		userRoom:  make(map[string]string),
		users:     make(map[string]domain.User),
	}
}

func (l *Lobby) WithMatcher(matcher domain.Matcher) *Lobby {
	l.matcher = matcher
	return l
}

func (l *Lobby) WithCensor(censor contract.Censor) *Lobby {
	l.censor = censor
	return l
}

// WithArchive sets the queue receiving released dialogs. Sends never block:
// a dialog is dropped when the queue is full.
func (l *Lobby) WithArchive(archive chan<- domain.Dialog) *Lobby {
	l.archive = archive
	return l
}

func (l *Lobby) WithClock(now func() time.Time) *Lobby {
	l.now = now
	return l
}

func (l *Lobby) Config() Config {
	return l.cfg
}

// LoadReleased restores the released chatrooms kept by the repository.
func (l *Lobby) LoadReleased() error {
	released, err := l.repo.GetReleased(l.cfg.ReleasedLimit)
	if err != nil {
		return fmt.Errorf("load released chatrooms: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = released
	l.log.Info("Released chatrooms loaded", "count", len(released))
	return nil
}

// Join places the user in the oldest chatroom waiting for a partner, or opens
// a new one. A user already in a chatroom (page reload) gets it back.
func (l *Lobby) Join(user domain.User) (domain.JoinInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if room, ok := l.chatrooms[l.userRoom[user.ID]]; ok {
		l.log.Debug("User rejoined its chatroom", "user", user.ID, "chatroom", room.ID)
		return l.joinInfo(user, room), nil
	}
	if busy, ok := lo.FindKeyBy(l.users, func(_ string, member domain.User) bool {
		return member.SessionID == user.SessionID
	}); ok {
		return domain.JoinInfo{}, fmt.Errorf("%w: %s", errors.ErrSessionBusy, busy)
	}

	now := l.now()
	room := l.findAvailable(user)
	if room == nil {
		room = domain.NewChatroom(uuid.NewString(), l.cfg.ExperimentID, user.ID, now)
		l.rooms = append(l.rooms, room)
		l.chatrooms[room.ID] = room
		l.log.Info("Chatroom created", "chatroom", room.ID, "user", user.ID)
	} else {
		room.AddUser(user.ID, now)
		l.log.Info("Chatroom completed", "chatroom", room.ID, "user", user.ID)
	}
	l.userRoom[user.ID] = room.ID
	l.users[user.ID] = user
	l.monitor.IncrJoins()
	return l.joinInfo(user, room), nil
}

func (l *Lobby) findAvailable(user domain.User) *domain.Chatroom {
	room, _ := lo.Find(l.rooms, func(room *domain.Chatroom) bool {
		if room.IsClosed() || room.Contains(user.ID) {
			return false
		}
		members := room.Users()
		if len(members) != 1 {
			return false
		}
		return l.matcher.Matches(user, l.users[members[0]])
	})
	return room
}

func (l *Lobby) joinInfo(user domain.User, room *domain.Chatroom) domain.JoinInfo {
	delay := l.cfg.DelayForPartner
	if room.IsClosed() {
		delay = 0
	}
	return domain.JoinInfo{
		ClientTabID:     user.TabID,
		ChatroomID:      room.ID,
		ExperimentID:    room.ExperimentID,
		IsFirstUser:     room.Initiator() == user.ID,
		MsgCountLow:     l.cfg.MsgCountLow,
		MsgCountHigh:    l.cfg.MsgCountHigh,
		PollInterval:    l.cfg.PollInterval,
		DelayForPartner: delay,
	}
}

func (l *Lobby) lookup(chatroomID string) (*domain.Chatroom, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	room, ok := l.chatrooms[chatroomID]
	return room, ok
}

// Poll answers as soon as the chatroom changed after since. It waits at most
// the poll timeout for a change and then fails with ErrPollExpired. Only
// members may poll a chatroom.
func (l *Lobby) Poll(ctx context.Context, userID, chatroomID, since string) (domain.ChatroomView, error) {
	room, ok := l.lookup(chatroomID)
	if !ok {
		return domain.ChatroomView{}, errors.ErrChatroomNotFound
	}
	if !room.Contains(userID) {
		return domain.ChatroomView{}, errors.ErrNotInChatroom
	}
	l.monitor.IncrPolls()
	room.HasPolled(userID, l.now())

	timer := time.NewTimer(l.cfg.PollTimeout)
	defer timer.Stop()
	for {
		// Grab the channel before checking so that no mutation is missed
		changed := room.Changed()
		if room.HasChanged(since) {
			return room.Snapshot(userID, since), nil
		}
		select {
		case <-changed:
		case <-timer.C:
			l.monitor.IncrExpiredPolls()
			return domain.ChatroomView{}, errors.ErrPollExpired
		case <-ctx.Done():
			return domain.ChatroomView{}, ctx.Err()
		}
	}
}

// Post appends a message of a member and returns the whole chatroom.
func (l *Lobby) Post(userID, chatroomID, body string) (domain.ChatroomView, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.ChatroomView{}, errors.ErrEmptyMessage
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	room, ok := l.chatrooms[chatroomID]
	if !ok {
		return domain.ChatroomView{}, errors.ErrChatroomNotFound
	}
	if !room.Contains(userID) {
		return domain.ChatroomView{}, errors.ErrNotInChatroom
	}
	if l.censor != nil {
		var words []string
		body, words = l.censor.Censor(body)
		if len(words) > 0 {
			l.monitor.IncrCensoredPosts()
			l.log.Info("Message censored", "chatroom", chatroomID, "user", userID, "words", len(words))
		}
	}
	evt := room.AddEvent(domain.MsgEvent, userID, body, l.now())
	l.store(room.ID, evt)
	l.monitor.IncrPosts()
	return room.Snapshot(userID, ""), nil
}

// Leave removes the user from the chatroom. The second return value is false
// when the chatroom was released because nobody is left in it.
func (l *Lobby) Leave(userID, chatroomID string, reason domain.LeaveReason) (domain.ChatroomView, bool, error) {
	if !reason.Valid() {
		return domain.ChatroomView{}, false, fmt.Errorf("%w: call %d", errors.ErrInvalidRequest, reason)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.chatrooms[chatroomID]
	if !ok {
		return domain.ChatroomView{}, false, errors.ErrChatroomNotFound
	}
	if released := l.leave(room, userID, reason); released {
		return domain.ChatroomView{}, false, nil
	}
	return room.Snapshot(userID, ""), true, nil
}

// leave must be called with the write lock held.
func (l *Lobby) leave(room *domain.Chatroom, userID string, reason domain.LeaveReason) bool {
	now := l.now()
	if room.RemoveUser(userID, now) {
		delete(l.userRoom, userID)
		delete(l.users, userID)
		l.monitor.IncrLeaves(reason)
		l.log.Info("User left", "chatroom", room.ID, "user", userID, "reason", reason.String())
		if !room.IsEmpty() {
			l.store(room.ID, room.AddEvent(domain.SysEvent, userID, LeftBody, now))
		}
	}
	if !room.IsEmpty() {
		return false
	}
	l.release(room, now)
	return true
}

func (l *Lobby) release(room *domain.Chatroom, now time.Time) {
	delete(l.chatrooms, room.ID)
	l.rooms = slices.DeleteFunc(l.rooms, func(r *domain.Chatroom) bool { return r.ID == room.ID })

	summary := room.Summary()
	summary.ReleasedAt = now.UTC()
	l.released = append(l.released, summary)
	if limit := l.cfg.ReleasedLimit; limit > 0 && len(l.released) > limit {
		l.released = slices.Clone(l.released[len(l.released)-limit:])
	}
	if err := l.repo.StoreReleased(summary); err != nil {
		l.log.Warn("Released chatroom not persisted", "chatroom", room.ID, "error", err)
	}
	l.monitor.IncrReleased()
	l.log.Info("Chatroom released", "chatroom", room.ID, "events", summary.Events, "messages", summary.Messages)

	if l.archive == nil {
		return
	}
	select {
	case l.archive <- room.Dialog(now):
	default:
		l.monitor.IncrArchiveDropped()
		l.log.Warn("Archive queue full, dialog dropped", "chatroom", room.ID)
	}
}

func (l *Lobby) store(chatroomID string, evt domain.Event) {
	if err := l.repo.StoreEvent(chatroomID, evt); err != nil {
		l.log.Warn("Event not persisted", "chatroom", chatroomID, "event", evt.ID, "error", err)
	}
}

// Reap evicts the users that have not polled for longer than the user
// timeout and returns how many were evicted.
func (l *Lobby) Reap(now time.Time) int {
	if l.cfg.UserTimeout <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	deadline := now.Add(-l.cfg.UserTimeout)
	evicted := 0
	for _, room := range slices.Clone(l.rooms) {
		for _, userID := range room.Users() {
			seen, ok := room.LastSeen(userID)
			if !ok || seen.After(deadline) {
				continue
			}
			l.log.Info("Evicting idle user", "chatroom", room.ID, "user", userID, "last_seen", seen)
			l.monitor.IncrEvictions()
			evicted++
			l.leave(room, userID, domain.LeaveEvicted)
		}
	}
	return evicted
}

// Chatrooms returns the summaries of the active chatrooms, oldest first, and
// of the released ones kept in memory, in release order.
func (l *Lobby) Chatrooms() (active, released []domain.ChatroomSummary) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	active = lo.Map(l.rooms, func(room *domain.Chatroom, _ int) domain.ChatroomSummary { return room.Summary() })
	return active, slices.Clone(l.released)
}

// Gauges returns the number of active chatrooms and of users still waiting
// for a partner.
func (l *Lobby) Gauges() (activeRooms, waitingUsers int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	waiting := lo.CountBy(l.rooms, func(room *domain.Chatroom) bool { return !room.IsClosed() })
	return len(l.rooms), waiting
}

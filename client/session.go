package client

import (
	"chat-collect/domain"
	"chat-collect/errors"
	"chat-collect/transcript"
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
)

type State string

const (
	StateIdle     State = "idle"
	StateWaiting  State = "waiting"
	StateActive   State = "active"
	StateOver     State = "over"
	StateTryLater State = "try_later"
	StateStopped  State = "stopped"
	StateThanks   State = "thanks"
)

// View is notified of everything the participant should see. Calls are made
// without holding the session lock, from the goroutine that caused them.
type View interface {
	StateChanged(state State)
	TranscriptUpdated(added []domain.Event, progress transcript.Progress)
	Notice(text string)
	Countdown(remaining time.Duration)
}

// Session runs one participant's dialog: it waits for a partner, polls the
// chatroom one request at a time, sends messages and leaves.
type Session struct {
	mu         sync.Mutex
	log        *slog.Logger
	api        Backend
	view       View
	info       domain.JoinInfo
	transcript *transcript.Transcript
	modified   string
	state      State

	started           bool
	leaving           bool
	stopConfirmed     bool
	confirmBeforeStop bool
	needsLeaving      bool
	tooShortShown     bool
	longEnoughShown   bool

	pollCancel context.CancelFunc
	resume     chan struct{}
	tick       time.Duration
	now        func() time.Time
}

func NewSession(api Backend, view View, log *slog.Logger) *Session {
	return &Session{
		log:               log,
		api:               api,
		view:              view,
		transcript:        transcript.New(),
		state:             StateIdle,
		confirmBeforeStop: true,
		needsLeaving:      true,
		resume:            make(chan struct{}, 1),
		tick:              time.Second,
		now:               time.Now,
	}
}

func (s *Session) Info() domain.JoinInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Events()
}

// setState must be called with the lock held; the returned func notifies the
// view and must be called after unlocking.
func (s *Session) setState(state State) func() {
	if s.state == state {
		return func() {}
	}
	s.state = state
	return func() { s.view.StateChanged(state) }
}

// Run joins a chatroom and polls it until the dialog is over, the
// participant leaves or ctx ends.
func (s *Session) Run(ctx context.Context) error {
	info, err := s.api.Join(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.info = info
	var notify func()
	finished := make(chan struct{})
	waited := make(chan struct{})
	switch {
	case info.DelayForPartner > 0:
		notify = s.setState(StateWaiting)
		go func() {
			defer close(waited)
			s.waitForPartner(ctx, info.DelayForPartner, finished)
		}()
	case !info.IsFirstUser:
		notify = s.startDialog()
		close(waited)
	default:
		notify = s.setState(StateWaiting)
		close(waited)
	}
	s.mu.Unlock()
	notify()
	s.log.Info("Chatroom joined", "chatroom", info.ChatroomID, "first_user", info.IsFirstUser, "delay", info.DelayForPartner)

	err = s.pollLoop(ctx)
	// The countdown may still be leaving the chatroom
	close(finished)
	<-waited
	return err
}

// startDialog must be called with the lock held.
func (s *Session) startDialog() func() {
	s.started = true
	return s.setState(StateActive)
}

func (s *Session) pollLoop(ctx context.Context) error {
	for {
		// Forget resume signals of posts made while no poll was running
		select {
		case <-s.resume:
		default:
		}

		s.mu.Lock()
		if s.leaving {
			s.mu.Unlock()
			return nil
		}
		pollCtx, cancel := context.WithCancel(ctx)
		s.pollCancel = cancel
		chatroomID, since := s.info.ChatroomID, s.modified
		s.mu.Unlock()

		result, err := s.api.Poll(pollCtx, chatroomID, since)

		s.mu.Lock()
		aborted := pollCtx.Err() != nil && ctx.Err() == nil
		s.pollCancel = nil
		leaving := s.leaving
		s.mu.Unlock()
		cancel()

		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case leaving:
			return nil
		case aborted:
			// A message is being sent; poll again once its answer is merged
			select {
			case <-s.resume:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		case err != nil:
			if !isTimeout(err) {
				s.log.Warn("Poll failed, retrying", "error", err)
				if !s.sleep(ctx, s.info.PollInterval) {
					return ctx.Err()
				}
			}
			continue
		case result.Expired:
			continue
		case result.Empty:
			s.log.Info("Chatroom is gone", "chatroom", chatroomID)
			s.mu.Lock()
			s.leaving = true
			notify := s.setState(StateOver)
			s.mu.Unlock()
			notify()
			return nil
		}
		s.handle(ctx, result.View)
	}
}

// handle applies a poll answer.
func (s *Session) handle(ctx context.Context, view domain.ChatroomView) {
	s.mu.Lock()
	notify := func() {}
	over := false
	if len(view.Users) > 1 {
		if !s.started {
			notify = s.startDialog()
		}
	} else if view.Closed {
		s.leaving = true
		over = true
		if !s.stopConfirmed {
			notify = s.setState(StateOver)
		}
	}
	added, progress := s.merge(view)
	chatroomID := s.info.ChatroomID
	s.mu.Unlock()

	notify()
	s.view.TranscriptUpdated(added, progress)
	if over {
		if _, err := s.api.Leave(ctx, chatroomID, domain.LeaveDialogOver); err != nil {
			s.log.Warn("Leaving finished dialog failed", "error", err)
		}
	}
}

// merge must be called with the lock held.
func (s *Session) merge(view domain.ChatroomView) ([]domain.Event, transcript.Progress) {
	if view.Modified != "" {
		s.modified = view.Modified
	}
	added := s.transcript.Merge(view.LatestEvents)
	return added, s.transcript.Progress(s.info.MsgCountLow, s.info.MsgCountHigh)
}

func (s *Session) abortPoll() {
	s.mu.Lock()
	cancel := s.pollCancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Session) signalResume() {
	select {
	case s.resume <- struct{}{}:
	default:
	}
}

// Send posts a message. Empty messages are ignored; a message is refused
// while the partner has not answered the previous one.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.mu.Lock()
	if s.leaving {
		s.mu.Unlock()
		return errors.ErrDialogOver
	}
	if err := s.transcript.CanSend(); err != nil {
		s.mu.Unlock()
		s.view.Notice(transcript.NoticeAwaitReply)
		return err
	}
	chatroomID := s.info.ChatroomID
	s.mu.Unlock()

	s.abortPoll()
	defer s.signalResume()

	view, err := s.api.Post(ctx, chatroomID, text)
	if err != nil {
		return err
	}

	s.mu.Lock()
	added, progress := s.merge(view)
	self, other := s.transcript.CountFor(domain.Self), s.transcript.CountFor(domain.Other)
	longEnough := !s.longEnoughShown && transcript.LongEnough(self, other, s.info.MsgCountHigh)
	if longEnough {
		s.longEnoughShown = true
	}
	s.mu.Unlock()

	s.view.TranscriptUpdated(added, progress)
	if longEnough {
		s.view.Notice(transcript.NoticeLongEnough)
	}
	return nil
}

// Stop ends the dialog on the participant's request. confirm asks the
// participant and is skipped when waiting for a partner timed out. It
// reports whether the session stopped.
func (s *Session) Stop(ctx context.Context, confirm func() bool) (bool, error) {
	s.mu.Lock()
	chatroomID := s.info.ChatroomID
	if !s.confirmBeforeStop {
		if s.needsLeaving {
			s.leaving = true
			s.mu.Unlock()
			_, err := s.api.Leave(ctx, chatroomID, domain.LeaveStopUnconfirmed)
			s.abortPoll()
			if err != nil {
				return false, err
			}
			s.mu.Lock()
			notify := s.setState(StateStopped)
			s.mu.Unlock()
			notify()
			return true, nil
		}
		if s.started {
			notify := s.setState(StateStopped)
			s.mu.Unlock()
			notify()
			return true, nil
		}
	}
	self, other := s.transcript.CountFor(domain.Self), s.transcript.CountFor(domain.Other)
	if s.started && !s.tooShortShown && transcript.TooShort(self, other, s.info.MsgCountLow) {
		s.tooShortShown = true
		s.mu.Unlock()
		s.view.Notice(transcript.HintShort)
		return false, nil
	}
	s.mu.Unlock()

	if confirm != nil && !confirm() {
		return false, nil
	}

	s.mu.Lock()
	s.leaving = true
	s.stopConfirmed = true
	started := s.started
	s.mu.Unlock()

	_, err := s.api.Leave(ctx, chatroomID, domain.LeaveStopConfirmed)
	s.abortPoll()
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	var notify func()
	if started {
		notify = s.setState(StateStopped)
	} else {
		notify = s.setState(StateThanks)
	}
	s.mu.Unlock()
	notify()
	return true, nil
}

// waitForPartner counts down the partner delay once per tick. When it
// expires before the dialog started, the session leaves and asks the
// participant to try later.
func (s *Session) waitForPartner(ctx context.Context, delay time.Duration, finished <-chan struct{}) {
	start := s.now()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-finished:
			return
		case <-ticker.C:
		}
		elapsed := s.now().Sub(start)

		s.mu.Lock()
		if s.started || s.leaving {
			s.mu.Unlock()
			return
		}
		if elapsed <= delay {
			s.mu.Unlock()
			s.view.Countdown((delay - elapsed).Round(time.Second))
			continue
		}
		s.leaving = true
		s.confirmBeforeStop = false
		notify := s.setState(StateTryLater)
		chatroomID := s.info.ChatroomID
		s.mu.Unlock()

		notify()
		s.abortPoll()
		if _, err := s.api.Leave(ctx, chatroomID, domain.LeaveWaitTimeout); err != nil {
			s.log.Warn("Leaving after waiting failed", "error", err)
			return
		}
		s.mu.Lock()
		s.needsLeaving = false
		s.mu.Unlock()
		return
	}
}

func (s *Session) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		d = time.Second
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout())
}

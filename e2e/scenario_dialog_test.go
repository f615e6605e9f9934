package e2e

import (
	"chat-collect/domain"
	"chat-collect/observability"
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type testDialogSuite struct {
	BaseHTTPSuite
}

func TestDialogSuite(t *testing.T) {
	suite.Run(t, &testDialogSuite{})
}

type chatrooms struct {
	Active   []domain.ChatroomSummary `json:"active"`
	Released []domain.ChatroomSummary `json:"released"`
}

func (s *testDialogSuite) TestFullDialogFlow() {
	alice, bob := s.Participant(), s.Participant()
	var first, second domain.JoinInfo
	var since string

	s.Run("Step 1: Two participants are paired", func() {
		s.Step("Join one after the other", func(ctx context.Context) {
			var err error
			first, err = alice.Join(ctx)
			s.Require().NoError(err)
			s.Require().True(first.IsFirstUser)

			second, err = bob.Join(ctx)
			s.Require().NoError(err)
			s.Require().Equal(first.ChatroomID, second.ChatroomID, "Another waiting participant took the partner")
		})
	})

	s.Run("Step 2: Messages go both ways", func() {
		s.Step("Exchange one message each", func(ctx context.Context) {
			view, err := alice.Post(ctx, first.ChatroomID, "こんにちは")
			s.Require().NoError(err)
			since = view.Modified

			poll, err := bob.Poll(ctx, second.ChatroomID, "")
			s.Require().NoError(err)
			msg, ok := lo.Find(poll.View.LatestEvents, func(e domain.Event) bool { return e.IsMessage() })
			s.Require().True(ok)
			s.Require().Equal(domain.Other, msg.From)
			s.Require().Equal("こんにちは", msg.Body)

			_, err = bob.Post(ctx, second.ChatroomID, "はじめまして")
			s.Require().NoError(err)

			poll, err = alice.Poll(ctx, first.ChatroomID, since)
			s.Require().NoError(err)
			s.Require().Len(poll.View.LatestEvents, 1)
			s.Require().Equal("はじめまして", poll.View.LatestEvents[0].Body)
			since = poll.View.Modified
		})
	})

	s.Run("Step 3: The dialog is released once both left", func() {
		s.Step("Leave and check the admin view", func(ctx context.Context) {
			_, err := bob.Leave(ctx, second.ChatroomID, domain.LeaveStopConfirmed)
			s.Require().NoError(err)

			poll, err := alice.Poll(ctx, first.ChatroomID, since)
			s.Require().NoError(err)
			s.Require().True(poll.View.Closed)
			s.Require().Len(poll.View.Users, 1)

			_, err = alice.Leave(ctx, first.ChatroomID, domain.LeaveDialogOver)
			s.Require().NoError(err)

			var rooms chatrooms
			s.Admin(ctx, "admin/chatrooms", nil, &rooms)
			released, ok := lo.Find(rooms.Released, func(r domain.ChatroomSummary) bool { return r.ID == first.ChatroomID })
			s.Require().True(ok, "Released chatroom missing from the admin view")
			s.Require().Equal(2, released.Messages)

			var stats observability.MonitoringStats
			s.Admin(ctx, "admin/stats", nil, &stats)
			s.Require().GreaterOrEqual(stats.Released, uint64(1))
		})
	})
}

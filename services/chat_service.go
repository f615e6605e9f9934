//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-collect/archive"
	"chat-collect/contract"
	"chat-collect/domain"
	"chat-collect/observability"
	"chat-collect/runtime"
	"context"
)

type IChatService interface {
	ExperimentID() string
	Join(user domain.User) (domain.JoinInfo, error)
	Poll(ctx context.Context, userID, chatroomID, since string) (domain.ChatroomView, error)
	Post(userID, chatroomID, body string) (domain.ChatroomView, error)
	Leave(userID, chatroomID string, reason domain.LeaveReason) (domain.ChatroomView, bool, error)
	Chatrooms() (active, released []domain.ChatroomSummary)
	Stats() observability.MonitoringStats
	Search(ctx context.Context, query, experiment string, limit int) ([]archive.Hit, error)
	Transcript(chatroomID string) ([]domain.Event, error)
}

// Searcher finds archived dialogs.
type Searcher interface {
	Search(ctx context.Context, text, experiment string, limit int) ([]archive.Hit, error)
}

type ChatService struct {
	lobby    *runtime.Lobby
	repo     contract.ChatroomRepository
	searcher Searcher
	monitor  *observability.MonitoringManager
}

func NewChatService(lobby *runtime.Lobby, repo contract.ChatroomRepository, searcher Searcher, monitor *observability.MonitoringManager) *ChatService {
	return &ChatService{lobby: lobby, repo: repo, searcher: searcher, monitor: monitor}
}

func (s *ChatService) ExperimentID() string {
	return s.lobby.Config().ExperimentID
}

func (s *ChatService) Join(user domain.User) (domain.JoinInfo, error) {
	return s.lobby.Join(user)
}

func (s *ChatService) Poll(ctx context.Context, userID, chatroomID, since string) (domain.ChatroomView, error) {
	return s.lobby.Poll(ctx, userID, chatroomID, since)
}

func (s *ChatService) Post(userID, chatroomID, body string) (domain.ChatroomView, error) {
	return s.lobby.Post(userID, chatroomID, body)
}

func (s *ChatService) Leave(userID, chatroomID string, reason domain.LeaveReason) (domain.ChatroomView, bool, error) {
	return s.lobby.Leave(userID, chatroomID, reason)
}

func (s *ChatService) Chatrooms() (active, released []domain.ChatroomSummary) {
	return s.lobby.Chatrooms()
}

// Stats returns the counters with the current room gauges.
func (s *ChatService) Stats() observability.MonitoringStats {
	stats := s.monitor.Snapshot()
	stats.ActiveRooms, stats.WaitingUsers = s.lobby.Gauges()
	return stats
}

// Search returns no hit when no archive index is configured.
func (s *ChatService) Search(ctx context.Context, query, experiment string, limit int) ([]archive.Hit, error) {
	if s.searcher == nil {
		return nil, nil
	}
	return s.searcher.Search(ctx, query, experiment, limit)
}

// Transcript returns every persisted event of a chatroom, active or released.
func (s *ChatService) Transcript(chatroomID string) ([]domain.Event, error) {
	return s.repo.GetEvents(chatroomID)
}

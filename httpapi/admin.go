package httpapi

import (
	"chat-collect/auth"
	"chat-collect/domain"
	"chat-collect/errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultSearchLimit = 20

type adminData struct {
	ExperimentID string
	Active       []domain.ChatroomSummary
	Released     []domain.ChatroomSummary
}

type chatroomsBody struct {
	ExperimentID string                   `json:"experimentId"`
	Active       []domain.ChatroomSummary `json:"active"`
	Released     []domain.ChatroomSummary `json:"released"`
}

func (s *Server) adminPage(w http.ResponseWriter, r *http.Request) {
	active, released := s.service.Chatrooms()
	s.pages.render(w, http.StatusOK, "admin.html", adminData{
		ExperimentID: s.service.ExperimentID(),
		Active:       active,
		Released:     released,
	})
}

func (s *Server) adminChatrooms(w http.ResponseWriter, r *http.Request) {
	active, released := s.service.Chatrooms()
	s.writeJSON(w, http.StatusOK, chatroomsBody{
		ExperimentID: s.service.ExperimentID(),
		Active:       nonNil(active),
		Released:     nonNil(released),
	})
}

func (s *Server) adminTranscript(w http.ResponseWriter, r *http.Request) {
	chatroomID := chi.URLParam(r, "id")
	events, err := s.service.Transcript(chatroomID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(events) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: %s", errors.ErrChatroomNotFound, chatroomID))
		return
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) adminStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.Stats())
}

func (s *Server) adminSearch(w http.ResponseWriter, r *http.Request) {
	request := auth.SearchRequest{
		Query:      r.FormValue("q"),
		Experiment: r.FormValue("experiment"),
		Limit:      defaultSearchLimit,
	}
	if limit := r.FormValue("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: limit must be a number", errors.ErrInvalidRequest))
			return
		}
		request.Limit = n
	}
	if err := auth.Validate(request); err != nil {
		s.writeError(w, r, err)
		return
	}
	hits, err := s.service.Search(r.Context(), request.Query, request.Experiment, request.Limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(hits))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

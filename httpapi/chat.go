package httpapi

import (
	"chat-collect/auth"
	"chat-collect/domain"
	"chat-collect/errors"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/samber/lo"
)

// joinParams are not user attributes.
var joinParams = []string{"clientTabId", "format"}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, http.StatusOK, "version.html", Version)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	s.pages.render(w, http.StatusOK, "index.html", nil)
}

// sessionUser builds the user behind a request already accepted by the
// session middlewares.
func sessionUser(r *http.Request, tabID string, attribs map[string]string) domain.User {
	sid, _ := auth.SessionFrom(r.Context())
	return domain.NewUser(sid, tabID, attribs)
}

// attributes keeps the extra join form fields, used to match partners.
func attributes(r *http.Request) map[string]string {
	attribs := lo.MapValues(lo.OmitByKeys(r.PostForm, joinParams), func(values []string, _ string) string {
		return lo.FirstOrEmpty(values)
	})
	if len(attribs) == 0 {
		return nil
	}
	return attribs
}

func (s *Server) join(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err))
		return
	}
	request := auth.JoinRequest{ClientTabID: r.PostFormValue("clientTabId")}
	if err := auth.Validate(request); err != nil {
		s.writeError(w, r, err)
		return
	}
	wantsJSON := r.FormValue("format") == "json"
	user := sessionUser(r, request.ClientTabID, attributes(r))

	info, err := s.service.Join(user)
	switch {
	case stderrors.Is(err, errors.ErrSessionBusy) && !wantsJSON:
		s.pages.render(w, http.StatusForbidden, "busy.html", nil)
		return
	case err != nil:
		s.writeError(w, r, err)
		return
	}
	if wantsJSON {
		s.writeJSON(w, http.StatusOK, info)
		return
	}
	s.pages.render(w, http.StatusOK, "chatroom.html", s.chatroomPage(user.ID, info))
}

func (s *Server) poll(w http.ResponseWriter, r *http.Request) {
	request := auth.PollRequest{
		ClientTabID: r.FormValue("clientTabId"),
		ChatroomID:  r.FormValue("id"),
		Since:       r.FormValue("timestamp"),
	}
	if err := auth.Validate(request); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := sessionUser(r, request.ClientTabID, nil)

	view, err := s.service.Poll(r.Context(), user.ID, request.ChatroomID, request.Since)
	switch {
	case stderrors.Is(err, errors.ErrChatroomNotFound), stderrors.Is(err, errors.ErrNotInChatroom):
		s.writeJSON(w, http.StatusOK, empty)
	case stderrors.Is(err, errors.ErrPollExpired):
		s.writeJSON(w, http.StatusOK, pollExpired)
	case r.Context().Err() != nil:
		s.log.Debug("Poll abandoned by client", "chatroom", request.ChatroomID, "user", user.ID)
	case err != nil:
		s.writeError(w, r, err)
	default:
		s.writeJSON(w, http.StatusOK, view)
	}
}

func (s *Server) post(w http.ResponseWriter, r *http.Request) {
	request := auth.PostRequest{
		ClientTabID: r.FormValue("clientTabId"),
		ChatroomID:  r.FormValue("chatroom"),
		Message:     r.FormValue("message"),
	}
	if err := auth.Validate(request); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := sessionUser(r, request.ClientTabID, nil)

	view, err := s.service.Post(user.ID, request.ChatroomID, request.Message)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) leave(w http.ResponseWriter, r *http.Request) {
	request := auth.LeaveRequest{
		ClientTabID: r.FormValue("clientTabId"),
		ChatroomID:  r.FormValue("chatroom"),
	}
	reason := domain.LeaveUnspecified
	if raw := r.FormValue("call"); raw != "" {
		call, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: call must be a number", errors.ErrInvalidRequest))
			return
		}
		request.Call = call
		reason = domain.LeaveReason(call)
	}
	if err := auth.Validate(request); err != nil {
		s.writeError(w, r, err)
		return
	}
	user := sessionUser(r, request.ClientTabID, nil)

	view, remaining, err := s.service.Leave(user.ID, request.ChatroomID, reason)
	switch {
	case stderrors.Is(err, errors.ErrChatroomNotFound):
		s.writeJSON(w, http.StatusOK, empty)
	case err != nil:
		s.writeError(w, r, err)
	case !remaining:
		s.writeJSON(w, http.StatusOK, empty)
	default:
		s.writeJSON(w, http.StatusOK, view)
	}
}

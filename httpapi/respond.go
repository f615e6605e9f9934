package httpapi

import (
	"chat-collect/errors"
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// empty is the answer for a chatroom that does not exist anymore.
var empty = struct{}{}

type expiredBody struct {
	Msg string `json:"msg"`
}

var pollExpired = expiredBody{Msg: errors.ErrPollExpired.Error()}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("Response not written", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.Debug("Request refused", "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error(), Code: errors.Code(err)})
}

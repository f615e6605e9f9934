package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrChatroomNotFound = fmt.Errorf("chatroom not found")
	ErrNotInChatroom    = fmt.Errorf("user is not a member of the chatroom")
	ErrSessionBusy      = fmt.Errorf("session is already chatting from another tab")
	ErrEmptyMessage     = fmt.Errorf("message is empty")
	ErrPollExpired      = fmt.Errorf("poll expired")
	ErrAwaitingReply    = fmt.Errorf("waiting for the partner to reply")
	ErrDialogOver       = fmt.Errorf("dialog is over")
	ErrInvalidSession   = fmt.Errorf("invalid session")
	ErrUnauthorized     = fmt.Errorf("unauthorized")
	ErrInvalidRequest   = fmt.Errorf("invalid request")
	ErrInvalidHash      = fmt.Errorf("invalid hash format")
)

// codes identifies the errors on the wire so that clients get the sentinel back.
var codes = []struct {
	err  error
	code string
}{
	{ErrChatroomNotFound, "chatroom_not_found"},
	{ErrNotInChatroom, "not_in_chatroom"},
	{ErrSessionBusy, "session_busy"},
	{ErrEmptyMessage, "empty_message"},
	{ErrPollExpired, "poll_expired"},
	{ErrAwaitingReply, "awaiting_reply"},
	{ErrDialogOver, "dialog_over"},
	{ErrInvalidSession, "invalid_session"},
	{ErrUnauthorized, "unauthorized"},
	{ErrInvalidRequest, "invalid_request"},
}

// Code returns the wire code of a domain error, "internal" for anything else.
func Code(err error) string {
	for _, c := range codes {
		if stderrors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}

// FromCode returns the sentinel error of a wire code, or nil when unknown.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// HTTPStatus maps a domain error to the status code returned by the transport.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidRequest), stderrors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrInvalidSession), stderrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrSessionBusy), stderrors.Is(err, ErrNotInChatroom):
		return http.StatusForbidden
	case stderrors.Is(err, ErrChatroomNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, ErrAwaitingReply), stderrors.Is(err, ErrDialogOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

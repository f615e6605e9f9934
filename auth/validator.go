package auth

import (
	"chat-collect/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxMessageLength bounds the body of a posted message, in bytes.
const MaxMessageLength = 4000

type JoinRequest struct {
	ClientTabID string `validate:"required,max=64"`
}

type PollRequest struct {
	ClientTabID string `validate:"required,max=64"`
	ChatroomID  string `validate:"required,uuid"`
	Since       string `validate:"omitempty,max=32"`
}

type PostRequest struct {
	ClientTabID string `validate:"required,max=64"`
	ChatroomID  string `validate:"required,uuid"`
	Message     string `validate:"required,max=4000"`
}

type LeaveRequest struct {
	ClientTabID string `validate:"required,max=64"`
	ChatroomID  string `validate:"required,uuid"`
	Call        int    `validate:"min=0,max=4"`
}

type SearchRequest struct {
	Query      string `validate:"required,max=200"`
	Experiment string `validate:"omitempty,max=64"`
	Limit      int    `validate:"min=1,max=100"`
}

// Validate checks a request struct and wraps any failure in
// ErrInvalidRequest.
func Validate(request any) error {
	if err := validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}

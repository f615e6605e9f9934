package domain

import "fmt"

// LeaveReason is the "call" sent by the client when it leaves a chatroom.
type LeaveReason int

const (
	LeaveEvicted LeaveReason = iota
	LeaveDialogOver
	LeaveWaitTimeout
	LeaveStopUnconfirmed
	LeaveStopConfirmed
	// LeaveUnspecified is a leave request without a call.
	LeaveUnspecified
)

func (r LeaveReason) String() string {
	switch r {
	case LeaveEvicted:
		return "evicted"
	case LeaveDialogOver:
		return "dialog_over"
	case LeaveWaitTimeout:
		return "wait_timeout"
	case LeaveStopUnconfirmed:
		return "stop_unconfirmed"
	case LeaveStopConfirmed:
		return "stop_confirmed"
	case LeaveUnspecified:
		return "unspecified"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

func (r LeaveReason) Valid() bool {
	return r >= LeaveEvicted && r <= LeaveUnspecified
}

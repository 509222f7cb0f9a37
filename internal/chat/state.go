package chat

import "errors"

// State is the request cycle of the chat client
type State int

const (
	StateIdle State = iota
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting response"
	default:
		return "unknown"
	}
}

// ErrNotAwaiting is returned when a response is delivered with no request in flight
var ErrNotAwaiting = errors.New("chat: no request in flight")

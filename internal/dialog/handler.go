// Package dialog implements the stateful dialog layer: a chain-of-responsibility
// dispatcher over handlers that each own one multi-turn flow (process lookup,
// human handoff). Handlers keep per-user scratch state in a StateStore and
// report how the conversation should proceed via Status.
package dialog

import "context"

// Status classifies the outcome of a turn for downstream channels.
type Status int

const (
	// StatusNormal means the conversation continues as usual.
	StatusNormal Status = iota
	// StatusEnded means the conversation is over (user said goodbye, session expired).
	StatusEnded
	// StatusHandoff means the conversation was transferred to a human operator.
	StatusHandoff
)

func (s Status) String() string {
	switch s {
	case StatusEnded:
		return "ended"
	case StatusHandoff:
		return "handoff"
	default:
		return "normal"
	}
}

// Result is what a handler (or the dispatcher) produces for one turn.
// An empty Reply means "this turn was not claimed".
type Result struct {
	Reply    string
	Continue bool
	Status   Status
}

// Handler owns one multi-turn dialog flow.
//
// CanHandle must be a pure predicate over the text and the handler's state
// for this specific user. Handle performs the state transition. Callers
// guarantee single-threaded access per user; handlers are not re-entrant
// for the same user.
type Handler interface {
	Name() string
	CanHandle(userID, text string) bool
	Handle(ctx context.Context, userID, text string) Result

	// Reset discards any in-flight flow state for the user. Called when a
	// conversation terminates outside the handler (session expiry, handoff
	// completed by another handler).
	Reset(userID string)
}

package dialog

import (
	"context"
	"log/slog"
)

// Dispatcher tries registered handlers in registration order and returns the
// first non-empty reply. Order is a contract: earlier handlers shadow later
// ones when both would claim a text.
type Dispatcher struct {
	handlers []Handler
}

// NewDispatcher creates a dispatcher over the given handlers, in order.
func NewDispatcher(handlers ...Handler) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Register appends a handler to the end of the chain.
func (d *Dispatcher) Register(h Handler) {
	d.handlers = append(d.handlers, h)
}

// Dispatch runs the chain for one turn. A zero Result (empty Reply) means no
// handler claimed the turn and the caller should fall through to the NLP
// engine. Handlers catch their own collaborator failures; nothing is caught
// here.
func (d *Dispatcher) Dispatch(ctx context.Context, userID, text string) Result {
	for _, h := range d.handlers {
		if !h.CanHandle(userID, text) {
			continue
		}
		res := h.Handle(ctx, userID, text)
		if res.Reply != "" {
			slog.Debug("dispatch: handler claimed turn",
				"handler", h.Name(), "user", userID, "status", res.Status.String())
			return res
		}
	}
	return Result{}
}

// ResetAll clears every handler's flow state for the user. Called on terminal
// transitions (session expiry, conversation end, handoff).
func (d *Dispatcher) ResetAll(userID string) {
	for _, h := range d.handlers {
		h.Reset(userID)
	}
}

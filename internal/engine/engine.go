// Package engine is the single inbound entry point every channel adapter
// consumes: session expiry check, dialog dispatch, NLP fallback, status
// classification. One call per inbound message; turns for the same user are
// serialized.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/nlp"
	"github.com/openjus/balcao/internal/sessions"
)

// Placeholder identifiers used when a dialog handler (not the NLP engine)
// produced the reply, so the feedback path still has stable tokens.
const (
	PlaceholderResponseID = "service_response"
	PlaceholderQuestionID = "unknown_question"
	unknownResponseID     = "unknown_response"
)

const (
	msgSessionExpired = "Sua sessão expirou por inatividade. Envie uma nova mensagem para começar de novo."
	msgEngineFailure  = "Desculpe, ocorreu um erro ao processar sua solicitação. " +
		"Por favor, tente novamente mais tarde."
)

// nlpTimeout bounds one NLP engine round trip (response + statement lookups).
const nlpTimeout = 25 * time.Second

// Reply is the uniform outcome delivered back to the originating channel.
type Reply struct {
	Text       string
	Confidence float64
	Status     dialog.Status
	SessionID  string
	QuestionID string
	ResponseID string
	// FromHandler is true when a dialog handler claimed the turn (the reply
	// then skipped the post-hoc status classifier).
	FromHandler bool
}

// Engine wires the dispatcher, session manager and NLP fallback together.
type Engine struct {
	dispatcher *dialog.Dispatcher
	sessions   *sessions.Manager
	responder  nlp.Responder
	classifier *dialog.Classifier

	mu    sync.Mutex
	users map[string]*sync.Mutex
}

// New creates the engine.
func New(d *dialog.Dispatcher, sm *sessions.Manager, responder nlp.Responder, classifier *dialog.Classifier) *Engine {
	return &Engine{
		dispatcher: d,
		sessions:   sm,
		responder:  responder,
		classifier: classifier,
		users:      make(map[string]*sync.Mutex),
	}
}

// HandleMessage processes one inbound message. Concurrent messages from
// different users proceed in parallel; messages from the same user are
// serialized so handler state transitions never race.
func (e *Engine) HandleMessage(ctx context.Context, userID, text string) Reply {
	lock := e.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Expiry is checked before refresh: an expired session terminates this
	// turn and the user starts over with their next message.
	if e.sessions.IsExpired(userID) {
		e.sessions.Clear(userID)
		e.dispatcher.ResetAll(userID)
		slog.Info("session expired", "user", userID)
		return Reply{
			Text:       msgSessionExpired,
			Status:     dialog.StatusEnded,
			QuestionID: PlaceholderQuestionID,
			ResponseID: PlaceholderResponseID,
		}
	}

	sessionID := e.sessions.GetOrCreate(userID)

	if res := e.dispatcher.Dispatch(ctx, userID, text); res.Reply != "" {
		e.finishTurn(userID, res.Status)
		confidence := 1.0
		if res.Continue {
			confidence = 0.8
		}
		return Reply{
			Text:        res.Reply,
			Confidence:  confidence,
			Status:      res.Status,
			SessionID:   sessionID,
			QuestionID:  PlaceholderQuestionID,
			ResponseID:  PlaceholderResponseID,
			FromHandler: true,
		}
	}

	return e.fallback(ctx, userID, sessionID, text)
}

// fallback consults the NLP engine and classifies its reply.
func (e *Engine) fallback(ctx context.Context, userID, sessionID, text string) Reply {
	nlpCtx, cancel := context.WithTimeout(ctx, nlpTimeout)
	defer cancel()

	replyText, confidence, err := e.responder.Respond(nlpCtx, text)
	if err != nil {
		slog.Warn("nlp fallback failed", "user", userID, "error", err)
		return Reply{
			Text:       msgEngineFailure,
			Status:     dialog.StatusNormal,
			SessionID:  sessionID,
			QuestionID: PlaceholderQuestionID,
			ResponseID: unknownResponseID,
		}
	}

	status := e.classifier.Classify(replyText)
	e.finishTurn(userID, status)

	questionID, responseID := e.statementIDs(nlpCtx, text, replyText)

	return Reply{
		Text:       replyText,
		Confidence: confidence,
		Status:     status,
		SessionID:  sessionID,
		QuestionID: questionID,
		ResponseID: responseID,
	}
}

// statementIDs recovers stable identifiers for the question/response pair.
// Lookup failures degrade to placeholders; they never fail the turn.
func (e *Engine) statementIDs(ctx context.Context, question, response string) (string, string) {
	questionID := PlaceholderQuestionID
	if sts, err := e.responder.FindStatements(ctx, question); err == nil && len(sts) > 0 {
		questionID = sts[0].ID
	}

	responseID := unknownResponseID
	if sts, err := e.responder.FindStatements(ctx, response); err == nil && len(sts) > 0 {
		responseID = sts[0].ID
	}
	return questionID, responseID
}

// finishTurn applies the terminal-status invariant: Ended and Handoff both
// clear every handler's conversation state; Ended also destroys the session.
func (e *Engine) finishTurn(userID string, status dialog.Status) {
	switch status {
	case dialog.StatusEnded:
		e.dispatcher.ResetAll(userID)
		e.sessions.Clear(userID)
	case dialog.StatusHandoff:
		e.dispatcher.ResetAll(userID)
	}
}

// userLock returns the serialization mutex for a user. Locks are never
// discarded; the map is bounded by the distinct-user population.
func (e *Engine) userLock(userID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.users[userID]
	if !ok {
		l = &sync.Mutex{}
		e.users[userID] = l
	}
	return l
}

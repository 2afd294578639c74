// Package nlp is the interface to the fallback natural-language response
// engine. The engine is an external collaborator: it answers free text with a
// reply plus a confidence score, and can look statements up by their exact
// text so feedback can be tied to stable identifiers.
package nlp

import "context"

// Statement is a stored question or response with its stable identifier.
type Statement struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Responder is the NLP fallback contract. Consulted only when no dialog
// handler claims a turn.
type Responder interface {
	Respond(ctx context.Context, text string) (reply string, confidence float64, err error)
	FindStatements(ctx context.Context, text string) ([]Statement, error)
}

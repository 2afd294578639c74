// Package lookup resolves judicial process numbers against the court
// registry API.
package lookup

import "context"

// Case is the registry record for one judicial process.
type Case struct {
	Number       string `json:"number"`
	Class        string `json:"class"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
	LastMovement string `json:"last_movement"`
	Tribunal     string `json:"tribunal"`
}

// Resolver looks up a validated 20-digit process number.
type Resolver interface {
	Resolve(ctx context.Context, number string) (*Case, error)
}

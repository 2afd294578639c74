// Package feedback persists user ratings of chatbot responses and throttles
// duplicate submissions. A rating nudges the stored confidence of the rated
// response so the NLP engine's answers drift toward what users confirm.
package feedback

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited is returned when a (user, response) pair resubmits within
// the cooldown window. Surfaced to the caller, never silently dropped.
var ErrRateLimited = errors.New("feedback: resubmitted within cooldown window")

// Entry is one feedback submission.
type Entry struct {
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	ResponseID string    `json:"response_id"`
	Rating     int       `json:"rating"` // 1 positive, 0 negative
	Comments   string    `json:"comments,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Stats summarizes recorded feedback.
type Stats struct {
	Total            int     `json:"total_feedback"`
	Positive         int     `json:"positive_feedback"`
	Negative         int     `json:"negative_feedback"`
	SatisfactionRate float64 `json:"satisfaction_rate"`
	Recent           []Entry `json:"recent_feedback"`
}

// Store is the persistent feedback collaborator.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Stats(ctx context.Context) (*Stats, error)
	// UpdateConfidence shifts the stored confidence of a response by delta,
	// clamped to [0,1]. Unknown responses start at 0.5.
	UpdateConfidence(ctx context.Context, responseID string, delta float64) error
	Close() error
}

// confidenceDelta is how much one rating moves a response's confidence.
const confidenceDelta = 0.1

// Service couples the store with the per-(user,response) cooldown limiter.
type Service struct {
	store   Store
	limiter *CooldownLimiter
}

// NewService creates the feedback service. A non-positive cooldown uses the
// limiter default.
func NewService(store Store, cooldown time.Duration) *Service {
	return &Service{store: store, limiter: NewCooldownLimiter(cooldown)}
}

// Submit records a rating unless the pair is inside the cooldown window.
func (s *Service) Submit(ctx context.Context, e Entry) error {
	if !s.limiter.Allow(e.UserID, e.ResponseID) {
		return ErrRateLimited
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if err := s.store.Record(ctx, e); err != nil {
		return err
	}
	s.limiter.Record(e.UserID, e.ResponseID)

	delta := confidenceDelta
	if e.Rating == 0 {
		delta = -confidenceDelta
	}
	return s.store.UpdateConfidence(ctx, e.ResponseID, delta)
}

// Stats reports aggregate feedback numbers.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.store.Stats(ctx)
}

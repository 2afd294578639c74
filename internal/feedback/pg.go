package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore implements Store backed by Postgres (managed mode). Schema is
// created by the migrations under migrations/.
type PGStore struct {
	db *sql.DB
}

// NewPGStore opens a Postgres connection pool and verifies connectivity.
func NewPGStore(dsn string) (*PGStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PGStore{db: db}, nil
}

func (s *PGStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, question_id, response_id, rating, comments, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.UserID, e.QuestionID, e.ResponseID, e.Rating, e.Comments, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *PGStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
		        count(*) FILTER (WHERE rating = 1),
		        count(*) FILTER (WHERE rating = 0)
		 FROM feedback`).Scan(&st.Total, &st.Positive, &st.Negative)
	if err != nil {
		return nil, fmt.Errorf("feedback stats: %w", err)
	}
	if st.Total > 0 {
		st.SatisfactionRate = float64(st.Positive) / float64(st.Total) * 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, question_id, response_id, rating, comments, created_at
		 FROM feedback ORDER BY created_at DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("recent feedback: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.QuestionID, &e.ResponseID, &e.Rating, &e.Comments, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		st.Recent = append(st.Recent, e)
	}
	return &st, rows.Err()
}

func (s *PGStore) UpdateConfidence(ctx context.Context, responseID string, delta float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_confidence (response_id, confidence)
		 VALUES ($1, LEAST(1.0, GREATEST(0.0, 0.5 + $2)))
		 ON CONFLICT (response_id)
		 DO UPDATE SET confidence = LEAST(1.0, GREATEST(0.0, response_confidence.confidence + $2))`,
		responseID, delta)
	if err != nil {
		return fmt.Errorf("update response confidence: %w", err)
	}
	return nil
}

func (s *PGStore) Close() error { return s.db.Close() }

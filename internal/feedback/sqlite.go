package feedback

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file (standalone mode, no
// Postgres required). Schema is created on open.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS feedback (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	question_id TEXT NOT NULL,
	response_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	comments TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feedback_response ON feedback(response_id);
CREATE INDEX IF NOT EXISTS idx_feedback_user ON feedback(user_id);
CREATE TABLE IF NOT EXISTS response_confidence (
	response_id TEXT PRIMARY KEY,
	confidence REAL NOT NULL
);`

// NewSQLiteStore opens (and initializes) the SQLite database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (user_id, question_id, response_id, rating, comments, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.UserID, e.QuestionID, e.ResponseID, e.Rating, e.Comments, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*),
		        coalesce(sum(CASE WHEN rating = 1 THEN 1 ELSE 0 END), 0),
		        coalesce(sum(CASE WHEN rating = 0 THEN 1 ELSE 0 END), 0)
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

func (s *SQLiteStore) UpdateConfidence(ctx context.Context, responseID string, delta float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO response_confidence (response_id, confidence)
		 VALUES (?, min(1.0, max(0.0, 0.5 + ?)))
		 ON CONFLICT (response_id)
		 DO UPDATE SET confidence = min(1.0, max(0.0, confidence + ?))`,
		responseID, delta, delta)
	if err != nil {
		return fmt.Errorf("update response confidence: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

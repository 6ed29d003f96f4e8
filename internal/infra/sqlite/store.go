package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"timed-exam-service/internal/domain"
)

// Store keeps results and official attempt markers in a single SQLite file.
// It implements both app.ResultsStore (via Results) and app.AttemptRegistry (via Attempts).
type Store struct {
	db *sql.DB
}

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "exam.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exam_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			full_name TEXT NOT NULL,
			collegiate_number TEXT NOT NULL,
			score INTEGER NOT NULL,
			quiz_type TEXT NOT NULL,
			taken_at_unix_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exam_attempts (
			collegiate_number TEXT PRIMARY KEY,
			taken_at_unix_ms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Results returns the results-store view of s.
func (s *Store) Results() *ResultsStore { return &ResultsStore{db: s.db} }

// Attempts returns the attempt-registry view of s.
func (s *Store) Attempts() *AttemptRegistry { return &AttemptRegistry{db: s.db} }

type ResultsStore struct {
	db *sql.DB
}

func (s *ResultsStore) Append(ctx context.Context, result domain.ExamResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_results (full_name, collegiate_number, score, quiz_type, taken_at_unix_ms) VALUES (?, ?, ?, ?, ?)`,
		result.FullName, result.CollegiateNumber, result.Score, string(result.Type), result.Date.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultsStore) ListAll(ctx context.Context) ([]domain.ExamResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT full_name, collegiate_number, score, quiz_type, taken_at_unix_ms FROM exam_results ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []domain.ExamResult
	for rows.Next() {
		var (
			r        domain.ExamResult
			quizType string
			takenAt  int64
		)
		if err := rows.Scan(&r.FullName, &r.CollegiateNumber, &r.Score, &quizType, &takenAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Type = domain.QuizType(quizType)
		r.Date = time.UnixMilli(takenAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ResultsStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exam_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

type AttemptRegistry struct {
	db *sql.DB
}

func (r *AttemptRegistry) HasTaken(ctx context.Context, collegiateNumber string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM exam_attempts WHERE collegiate_number = ?`, collegiateNumber).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return n > 0, nil
}

func (r *AttemptRegistry) MarkTaken(ctx context.Context, collegiateNumber string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO exam_attempts (collegiate_number, taken_at_unix_ms) VALUES (?, ?)`,
		collegiateNumber, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("mark attempt: %w", err)
	}
	return nil
}

func (r *AttemptRegistry) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exam_attempts`); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

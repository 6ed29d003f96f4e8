package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"timed-exam-service/internal/domain"
)

// ResultsStore persists results in the exam_results table.
type ResultsStore struct {
	pool *pgxpool.Pool
}

func NewResultsStore(pool *pgxpool.Pool) *ResultsStore {
	return &ResultsStore{pool: pool}
}

func (s *ResultsStore) Append(ctx context.Context, result domain.ExamResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exam_results (full_name, collegiate_number, score, quiz_type, taken_at) VALUES ($1, $2, $3, $4, $5)`,
		result.FullName, result.CollegiateNumber, result.Score, string(result.Type), result.Date)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *ResultsStore) ListAll(ctx context.Context) ([]domain.ExamResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT full_name, collegiate_number, score, quiz_type, taken_at FROM exam_results ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []domain.ExamResult
	for rows.Next() {
		var (
			r        domain.ExamResult
			quizType string
		)
		if err := rows.Scan(&r.FullName, &r.CollegiateNumber, &r.Score, &quizType, &r.Date); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Type = domain.QuizType(quizType)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ResultsStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM exam_results`); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

// AttemptRegistry records official attempts in exam_attempts.
type AttemptRegistry struct {
	pool *pgxpool.Pool
}

func NewAttemptRegistry(pool *pgxpool.Pool) *AttemptRegistry {
	return &AttemptRegistry{pool: pool}
}

func (r *AttemptRegistry) HasTaken(ctx context.Context, collegiateNumber string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exam_attempts WHERE collegiate_number=$1)`, collegiateNumber).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return taken, nil
}

func (r *AttemptRegistry) MarkTaken(ctx context.Context, collegiateNumber string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_attempts (collegiate_number) VALUES ($1) ON CONFLICT (collegiate_number) DO NOTHING`,
		collegiateNumber)
	if err != nil {
		return fmt.Errorf("mark attempt: %w", err)
	}
	return nil
}

func (r *AttemptRegistry) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM exam_attempts`); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}

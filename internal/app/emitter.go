package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"timed-exam-service/internal/domain"
)

const defaultEmitTimeout = 5 * time.Second

// ResultEmitter hands finished attempts to the results store and the attempt registry.
type ResultEmitter struct {
	results  ResultsStore
	registry AttemptRegistry
	timeout  time.Duration
	log      zerolog.Logger
}

func NewResultEmitter(results ResultsStore, registry AttemptRegistry, timeout time.Duration, log zerolog.Logger) *ResultEmitter {
	if timeout <= 0 {
		timeout = defaultEmitTimeout
	}
	return &ResultEmitter{
		results:  results,
		registry: registry,
		timeout:  timeout,
		log:      log.With().Str("component", "result_emitter").Logger(),
	}
}

// Emit appends one ExamResult and, for official attempts, marks the candidate
// as having taken the exam. Failures are logged only: the score has already
// been shown and must not be lost to a storage problem.
func (e *ResultEmitter) Emit(outcome domain.FinishOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	result := outcome.Result()
	if err := e.results.Append(ctx, result); err != nil {
		e.log.Error().Err(err).
			Str("session_id", outcome.SessionID).
			Str("collegiate_number", result.CollegiateNumber).
			Int("score", result.Score).
			Msg("failed to store exam result")
	}

	if !outcome.QuizType.Proctored() {
		return
	}
	if err := e.registry.MarkTaken(ctx, result.CollegiateNumber); err != nil {
		e.log.Error().Err(err).
			Str("session_id", outcome.SessionID).
			Str("collegiate_number", result.CollegiateNumber).
			Msg("failed to record official attempt")
	}
}

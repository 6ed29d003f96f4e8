package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"timed-exam-service/internal/domain"
)

// SessionRepository abstracts where live exam sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
	All() []*Session
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// ResultsStore is the append-only record of finished attempts.
type ResultsStore interface {
	Append(ctx context.Context, result domain.ExamResult) error
	ListAll(ctx context.Context) ([]domain.ExamResult, error)
	Clear(ctx context.Context) error
}

// AttemptRegistry remembers which candidates already took the official exam.
type AttemptRegistry interface {
	HasTaken(ctx context.Context, collegiateNumber string) (bool, error)
	MarkTaken(ctx context.Context, collegiateNumber string) error
	Clear(ctx context.Context) error
}

// CredentialVerifier checks role secrets (admin panel, practice mode).
type CredentialVerifier interface {
	Verify(role domain.Role, secret string) bool
}

// Dependencies are the collaborators an ExamService is wired with.
type Dependencies struct {
	Sessions SessionRepository
	Banks    BankRepository
	Results  ResultsStore
	Attempts AttemptRegistry
	Verifier CredentialVerifier
}

// Settings tune the exam rules.
type Settings struct {
	BankID string
	// PerQuestionSeconds is an operator override; zero means DefaultPerQuestionSeconds.
	PerQuestionSeconds int
	EmitTimeout        time.Duration
	// RetainSubmitted is how long a submitted session stays readable (for a
	// reconnecting client) before it is evicted from the session store.
	RetainSubmitted time.Duration
}

const defaultRetainSubmitted = 2 * time.Minute

// TickerFunc starts a one-second tick source and returns it with its stop func.
type TickerFunc func() (<-chan time.Time, func())

// Option customises an ExamService, mostly for tests.
type Option func(*ExamService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *ExamService) { s.now = now }
}

// WithTicker replaces the wall-clock ticker that drives session timers.
func WithTicker(fn TickerFunc) Option {
	return func(s *ExamService) { s.newTicker = fn }
}

// WithShuffler replaces the randomly seeded shuffler.
func WithShuffler(sh *Shuffler) Option {
	return func(s *ExamService) { s.shuffler = sh }
}

// StartRequest is the session-start input: a candidate, a quiz type and, for
// practice mode, the practice secret.
type StartRequest struct {
	User     domain.User
	QuizType domain.QuizType
	Secret   string
}

// ExamService contains the exam use cases.
type ExamService struct {
	sessions SessionRepository
	banks    BankRepository
	results  ResultsStore
	attempts AttemptRegistry
	verifier CredentialVerifier
	emitter  *ResultEmitter
	shuffler *Shuffler
	settings Settings
	log      zerolog.Logger

	now       func() time.Time
	newTicker TickerFunc
}

func NewExamService(deps Dependencies, settings Settings, log zerolog.Logger, opts ...Option) *ExamService {
	if settings.PerQuestionSeconds <= 0 {
		settings.PerQuestionSeconds = domain.DefaultPerQuestionSeconds
	}
	if settings.RetainSubmitted <= 0 {
		settings.RetainSubmitted = defaultRetainSubmitted
	}
	s := &ExamService{
		sessions:  deps.Sessions,
		banks:     deps.Banks,
		results:   deps.Results,
		attempts:  deps.Attempts,
		verifier:  deps.Verifier,
		emitter:   NewResultEmitter(deps.Results, deps.Attempts, settings.EmitTimeout, log),
		shuffler:  NewShuffler(),
		settings:  settings,
		log:       log.With().Str("component", "exam_service").Logger(),
		now:       time.Now,
		newTicker: secondTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func secondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// Start gates and creates a new exam session. Official attempts are refused
// before any configuration is built when the candidate already has one on record.
func (s *ExamService) Start(ctx context.Context, req StartRequest) (*Session, error) {
	user := domain.User{
		FullName:         strings.TrimSpace(req.User.FullName),
		CollegiateNumber: strings.TrimSpace(req.User.CollegiateNumber),
	}
	if user.FullName == "" || user.CollegiateNumber == "" {
		return nil, domain.ErrInvalidUser
	}
	if !req.QuizType.Valid() {
		return nil, domain.ErrInvalidQuizType
	}

	if req.QuizType.Proctored() {
		taken, err := s.attempts.HasTaken(ctx, user.CollegiateNumber)
		if err != nil {
			return nil, fmt.Errorf("check attempt registry: %w", err)
		}
		if taken {
			return nil, domain.ErrAttemptTaken
		}
	} else if !s.verifier.Verify(domain.RolePractice, req.Secret) {
		return nil, domain.ErrInvalidCredentials
	}

	bank, err := s.banks.GetBank(ctx, s.settings.BankID)
	if err != nil {
		return nil, fmt.Errorf("load bank %q: %w", s.settings.BankID, err)
	}

	cfg := domain.ExamConfiguration{
		Questions:          s.shuffler.Shuffle(bank.Questions),
		Proctored:          req.QuizType.Proctored(),
		PerQuestionSeconds: s.settings.PerQuestionSeconds,
	}
	session := NewSession(SessionParams{
		ID:       uuid.NewString(),
		User:     user,
		QuizType: req.QuizType,
		Config:   cfg,
		Now:      s.now,
		OnFinish: s.handleFinish,
	})
	s.sessions.Put(session)

	ticks, stop := s.newTicker()
	session.Start(ticks, stop)

	s.log.Info().
		Str("session_id", session.ID()).
		Str("collegiate_number", user.CollegiateNumber).
		Str("quiz_type", string(req.QuizType)).
		Int("questions", len(cfg.Questions)).
		Int("time_limit_seconds", cfg.TotalSeconds()).
		Msg("exam session started")
	return session, nil
}

func (s *ExamService) handleFinish(outcome domain.FinishOutcome) {
	s.log.Info().
		Str("session_id", outcome.SessionID).
		Str("collegiate_number", outcome.User.CollegiateNumber).
		Str("trigger", string(outcome.Trigger)).
		Int("score", outcome.Score).
		Msg("exam session submitted")
	s.emitter.Emit(outcome)
	time.AfterFunc(s.settings.RetainSubmitted, func() { s.evict(outcome.SessionID) })
}

// evict drops a submitted session once its retention window has passed.
func (s *ExamService) evict(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || session.Active() {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.log.Debug().Str("session_id", sessionID).Msg("submitted exam session evicted")
}

// Session looks up a live session.
func (s *ExamService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Finish submits a session on the candidate's confirmation.
func (s *ExamService) Finish(sessionID string) (domain.FinishOutcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return domain.FinishOutcome{}, err
	}
	outcome, _ := session.Finish(domain.TriggerUser)
	return outcome, nil
}

// Release tears a session down and forgets it. An unsubmitted session is
// abandoned, not scored.
func (s *ExamService) Release(sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
	s.log.Debug().Str("session_id", sessionID).Msg("exam session released")
}

// Shutdown closes every live session.
func (s *ExamService) Shutdown() {
	for _, session := range s.sessions.All() {
		session.Close()
		s.sessions.Delete(session.ID())
	}
}

// Results lists stored results for an administrator, filtered by query.
func (s *ExamService) Results(ctx context.Context, adminSecret, query string) ([]domain.ExamResult, error) {
	if !s.verifier.Verify(domain.RoleAdmin, adminSecret) {
		return nil, domain.ErrInvalidCredentials
	}
	results, err := s.results.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return FilterResults(results, query), nil
}

// ClearResults wipes stored results and the attempt registry so candidates may retake.
func (s *ExamService) ClearResults(ctx context.Context, adminSecret string) error {
	if !s.verifier.Verify(domain.RoleAdmin, adminSecret) {
		return domain.ErrInvalidCredentials
	}
	if err := s.results.Clear(ctx); err != nil {
		return fmt.Errorf("clear results: %w", err)
	}
	if err := s.attempts.Clear(ctx); err != nil {
		return fmt.Errorf("clear attempt registry: %w", err)
	}
	s.log.Warn().Msg("exam results and attempt registry cleared")
	return nil
}

// FilterResults keeps results whose name contains query (case-insensitive) or
// whose collegiate number contains it. An empty query keeps everything.
func FilterResults(results []domain.ExamResult, query string) []domain.ExamResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return results
	}
	lower := strings.ToLower(query)
	out := make([]domain.ExamResult, 0, len(results))
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.FullName), lower) || strings.Contains(r.CollegiateNumber, query) {
			out = append(out, r)
		}
	}
	return out
}

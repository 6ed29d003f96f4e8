package domain

import (
	"fmt"
	"time"
)

// QuizType selects between the proctored official attempt and free practice.
type QuizType string

const (
	QuizTypeOfficial QuizType = "OFFICIAL"
	QuizTypePractice QuizType = "PRACTICE"
)

// Valid reports whether t is a known quiz type.
func (t QuizType) Valid() bool {
	return t == QuizTypeOfficial || t == QuizTypePractice
}

// Proctored reports whether sessions of this type run under the anti-cheat watchdog
// and the one-attempt rule.
func (t QuizType) Proctored() bool {
	return t == QuizTypeOfficial
}

// Role names a credential checked by the verifier.
type Role string

const (
	RoleAdmin    Role = "admin"
	RolePractice Role = "practice"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusSubmitted SessionStatus = "SUBMITTED"
)

// FinishTrigger records which path submitted a session.
type FinishTrigger string

const (
	TriggerUser      FinishTrigger = "user"
	TriggerTimeout   FinishTrigger = "timeout"
	TriggerViolation FinishTrigger = "violation"
)

// Visibility is the host page state reported by the client.
type Visibility string

const (
	VisibilityVisible Visibility = "visible"
	VisibilityHidden  Visibility = "hidden"
)

// DefaultPerQuestionSeconds is the time budget granted for each question.
const DefaultPerQuestionSeconds = 90

// PassingScore is the lowest score that passes the exam.
const PassingScore = 70

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question with exactly one correct option.
type Question struct {
	ID              int      `json:"id"`
	Text            string   `json:"text"`
	Options         []Option `json:"options"`
	CorrectOptionID string   `json:"correctOptionId"`
}

// HasOption reports whether optionID belongs to the question.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Validate checks option uniqueness and that the correct option appears exactly once.
func (q Question) Validate() error {
	seen := make(map[string]struct{}, len(q.Options))
	matches := 0
	for _, opt := range q.Options {
		if _, dup := seen[opt.ID]; dup {
			return fmt.Errorf("question %d: duplicate option %q: %w", q.ID, opt.ID, ErrInvalidBank)
		}
		seen[opt.ID] = struct{}{}
		if opt.ID == q.CorrectOptionID {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("question %d: correct option %q not among options: %w", q.ID, q.CorrectOptionID, ErrInvalidBank)
	}
	return nil
}

// Public strips the correct answer so the question can be sent to candidates.
func (q Question) Public() PublicQuestion {
	opts := make([]Option, len(q.Options))
	copy(opts, q.Options)
	return PublicQuestion{ID: q.ID, Text: q.Text, Options: opts}
}

// PublicQuestion is the candidate-facing view of a question.
type PublicQuestion struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Bank is a named, ordered collection of questions.
type Bank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Validate checks every question and that question IDs are unique.
func (b Bank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("bank %q has no questions: %w", b.ID, ErrInvalidBank)
	}
	ids := make(map[int]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if _, dup := ids[q.ID]; dup {
			return fmt.Errorf("bank %q: duplicate question %d: %w", b.ID, q.ID, ErrInvalidBank)
		}
		ids[q.ID] = struct{}{}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// User identifies a candidate.
type User struct {
	FullName         string `json:"fullName"`
	CollegiateNumber string `json:"collegiateNumber"`
}

// ExamConfiguration is fixed at session start.
type ExamConfiguration struct {
	Questions          []Question
	Proctored          bool
	PerQuestionSeconds int
}

// TotalSeconds is the whole exam's time budget.
func (c ExamConfiguration) TotalSeconds() int {
	return c.PerQuestionSeconds * len(c.Questions)
}

// ExamResult is the persisted record of a finished attempt.
type ExamResult struct {
	FullName         string    `json:"fullName"`
	CollegiateNumber string    `json:"collegiateNumber"`
	Score            int       `json:"score"`
	Date             time.Time `json:"date"`
	Type             QuizType  `json:"type"`
}

// FinishOutcome is produced once per session when it is submitted.
type FinishOutcome struct {
	SessionID  string         `json:"sessionId"`
	User       User           `json:"user"`
	QuizType   QuizType       `json:"quizType"`
	Score      int            `json:"score"`
	Passed     bool           `json:"passed"`
	Answers    map[int]string `json:"answers"`
	Trigger    FinishTrigger  `json:"trigger"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Result converts the outcome into the record handed to the results store.
func (o FinishOutcome) Result() ExamResult {
	return ExamResult{
		FullName:         o.User.FullName,
		CollegiateNumber: o.User.CollegiateNumber,
		Score:            o.Score,
		Date:             o.FinishedAt,
		Type:             o.QuizType,
	}
}

// SessionView is everything a client needs to render the exam screen.
type SessionView struct {
	SessionID        string         `json:"sessionId"`
	Status           SessionStatus  `json:"status"`
	QuizType         QuizType       `json:"quizType"`
	User             User           `json:"user"`
	CurrentIndex     int            `json:"currentIndex"`
	Question         PublicQuestion `json:"question"`
	Total            int            `json:"total"`
	Answers          map[int]string `json:"answers"`
	Marked           []int          `json:"marked"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Clock            string         `json:"clock"`
	Progress         float64        `json:"progress"`
	ConfirmPending   bool           `json:"confirmPending"`
	Outcome          *FinishOutcome `json:"outcome,omitempty"`
}

// SessionEvent is pushed to subscribers whenever the session changes.
type SessionEvent struct {
	Type    string      `json:"type"`
	View    SessionView `json:"view"`
	Message string      `json:"message,omitempty"`
}

// Session event types.
const (
	EventState    = "state"
	EventTick     = "tick"
	EventWarning  = "warning"
	EventFinished = "finished"
)

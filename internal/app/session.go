package app

import (
	"sort"
	"sync"
	"time"

	"timed-exam-service/internal/domain"
)

// SessionParams holds everything fixed at session start.
type SessionParams struct {
	ID       string
	User     domain.User
	QuizType domain.QuizType
	Config   domain.ExamConfiguration
	// Now defaults to time.Now.
	Now func() time.Time
	// OnFinish receives the outcome exactly once, after the session is sealed.
	OnFinish func(domain.FinishOutcome)
}

// Session is one candidate's attempt. It moves from ACTIVE to SUBMITTED exactly
// once, through Finish, whichever of the user, the timer or the watchdog gets there first.
type Session struct {
	id        string
	user      domain.User
	quizType  domain.QuizType
	cfg       domain.ExamConfiguration
	positions map[int]int
	now       func() time.Time
	createdAt time.Time
	onFinish  func(domain.FinishOutcome)
	hub       *VisibilityHub

	mu             sync.Mutex
	status         domain.SessionStatus
	current        int
	answers        map[int]string
	marked         map[int]struct{}
	confirmPending bool
	warned         bool
	outcome        *domain.FinishOutcome
	timer          *Timer
	releasers      []func()
	closed         bool
	subscribers    map[chan domain.SessionEvent]struct{}
}

func NewSession(p SessionParams) *Session {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	positions := make(map[int]int, len(p.Config.Questions))
	for i, q := range p.Config.Questions {
		positions[q.ID] = i
	}
	return &Session{
		id:          p.ID,
		user:        p.User,
		quizType:    p.QuizType,
		cfg:         p.Config,
		positions:   positions,
		now:         now,
		createdAt:   now(),
		onFinish:    p.OnFinish,
		hub:         NewVisibilityHub(),
		status:      domain.SessionStatusActive,
		answers:     make(map[int]string),
		marked:      make(map[int]struct{}),
		subscribers: make(map[chan domain.SessionEvent]struct{}),
	}
}

func (s *Session) ID() string                { return s.id }
func (s *Session) User() domain.User         { return s.user }
func (s *Session) QuizType() domain.QuizType { return s.quizType }
func (s *Session) CreatedAt() time.Time      { return s.createdAt }

// Visibility is where the transport publishes page visibility changes.
func (s *Session) Visibility() *VisibilityHub { return s.hub }

// Start arms the countdown on ticks and, for proctored sessions, the watchdog.
// stopTicks (optional) is called once the timer goroutine exits.
func (s *Session) Start(ticks <-chan time.Time, stopTicks func()) {
	timer := NewTimer(s.cfg.TotalSeconds(), s.now, s.onTimerTick, func() {
		s.Finish(domain.TriggerTimeout)
	})

	s.mu.Lock()
	if s.status != domain.SessionStatusActive || s.closed || s.timer != nil {
		s.mu.Unlock()
		if stopTicks != nil {
			stopTicks()
		}
		return
	}
	s.timer = timer
	s.releasers = append(s.releasers, timer.Stop)
	if s.cfg.Proctored {
		dog := AttachWatchdog(s.hub, s.onHidden)
		s.releasers = append(s.releasers, dog.Release)
	}
	s.mu.Unlock()

	go func() {
		timer.Run(ticks)
		if stopTicks != nil {
			stopTicks()
		}
	}()
}

// Active reports whether the session still accepts intents.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status == domain.SessionStatusActive
}

// SelectOption records optionID as the answer to the current question.
func (s *Session) SelectOption(optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.SessionStatusActive {
		return domain.ErrSessionSubmitted
	}
	if len(s.cfg.Questions) == 0 {
		return domain.ErrQuestionNotFound
	}
	q := s.cfg.Questions[s.current]
	if !q.HasOption(optionID) {
		return domain.ErrOptionNotFound
	}
	s.answers[q.ID] = optionID
	s.broadcastLocked(domain.EventState, "")
	return nil
}

// ToggleMark flags or unflags a question for review.
func (s *Session) ToggleMark(questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.SessionStatusActive {
		return domain.ErrSessionSubmitted
	}
	if _, ok := s.positions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	if _, ok := s.marked[questionID]; ok {
		delete(s.marked, questionID)
	} else {
		s.marked[questionID] = struct{}{}
	}
	s.broadcastLocked(domain.EventState, "")
	return nil
}

// GoTo moves to index, clamped to the question range.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveLocked(index)
}

func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveLocked(s.current + 1)
}

func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveLocked(s.current - 1)
}

func (s *Session) moveLocked(index int) {
	if s.status != domain.SessionStatusActive || len(s.cfg.Questions) == 0 {
		return
	}
	last := len(s.cfg.Questions) - 1
	if index < 0 {
		index = 0
	}
	if index > last {
		index = last
	}
	if index == s.current {
		return
	}
	s.current = index
	s.broadcastLocked(domain.EventState, "")
}

// RequestFinish opens the confirmation step; it never submits.
func (s *Session) RequestFinish() error {
	return s.setConfirm(true)
}

// CancelFinish dismisses the confirmation step.
func (s *Session) CancelFinish() error {
	return s.setConfirm(false)
}

func (s *Session) setConfirm(pending bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.SessionStatusActive {
		return domain.ErrSessionSubmitted
	}
	if s.confirmPending != pending {
		s.confirmPending = pending
		s.broadcastLocked(domain.EventState, "")
	}
	return nil
}

// Finish is the only way into SUBMITTED. The first caller scores a snapshot of
// the answers, releases the timer and watchdog, and hands the outcome to
// OnFinish; it gets ok=true. Every later caller gets the same outcome and ok=false.
func (s *Session) Finish(trigger domain.FinishTrigger) (domain.FinishOutcome, bool) {
	s.mu.Lock()
	if s.status != domain.SessionStatusActive {
		outcome := copyOutcome(*s.outcome)
		s.mu.Unlock()
		return outcome, false
	}

	answers := copyAnswers(s.answers)
	outcome := domain.FinishOutcome{
		SessionID:  s.id,
		User:       s.user,
		QuizType:   s.quizType,
		Answers:    answers,
		Trigger:    trigger,
		FinishedAt: s.now(),
	}
	outcome.Score = Score(s.cfg.Questions, answers)
	outcome.Passed = outcome.Score >= domain.PassingScore
	s.status = domain.SessionStatusSubmitted
	s.confirmPending = false
	s.outcome = &outcome
	releasers := s.takeReleasersLocked()
	s.broadcastLocked(domain.EventFinished, "")
	s.mu.Unlock()

	for _, release := range releasers {
		release()
	}
	if s.onFinish != nil {
		s.onFinish(copyOutcome(outcome))
	}
	return copyOutcome(outcome), true
}

// Close tears the session down without submitting it: observers are released
// and subscriber channels are closed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	releasers := s.takeReleasersLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()

	for _, release := range releasers {
		release()
	}
}

func (s *Session) takeReleasersLocked() []func() {
	releasers := s.releasers
	s.releasers = nil
	return releasers
}

func (s *Session) onTimerTick(int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.SessionStatusActive {
		return
	}
	s.broadcastLocked(domain.EventTick, "")
}

func (s *Session) onHidden() {
	s.mu.Lock()
	if s.status != domain.SessionStatusActive || s.warned {
		s.mu.Unlock()
		return
	}
	s.warned = true
	s.broadcastLocked(domain.EventWarning, ViolationWarning)
	s.mu.Unlock()

	s.Finish(domain.TriggerViolation)
}

// Progress is the answered fraction, recomputed on every call.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress(len(s.answers), len(s.cfg.Questions))
}

// View returns a render-ready snapshot.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Subscribe returns a channel that receives session events, starting with the
// current state. The caller must invoke cancel to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 8)

	s.mu.Lock()
	initial := domain.SessionEvent{Type: domain.EventState, View: s.viewLocked()}
	if s.status == domain.SessionStatusSubmitted {
		initial.Type = domain.EventFinished
	}
	ch <- initial
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(eventType, message string) {
	if len(s.subscribers) == 0 {
		return
	}
	event := domain.SessionEvent{Type: eventType, View: s.viewLocked(), Message: message}
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest queued event so a slow reader never blocks intents.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) viewLocked() domain.SessionView {
	remaining := s.cfg.TotalSeconds()
	if s.timer != nil {
		remaining = s.timer.Remaining()
	}
	marked := make([]int, 0, len(s.marked))
	for id := range s.marked {
		marked = append(marked, id)
	}
	sort.Ints(marked)

	view := domain.SessionView{
		SessionID:        s.id,
		Status:           s.status,
		QuizType:         s.quizType,
		User:             s.user,
		CurrentIndex:     s.current,
		Total:            len(s.cfg.Questions),
		Answers:          copyAnswers(s.answers),
		Marked:           marked,
		RemainingSeconds: remaining,
		Clock:            FormatClock(remaining),
		Progress:         Progress(len(s.answers), len(s.cfg.Questions)),
		ConfirmPending:   s.confirmPending,
	}
	if len(s.cfg.Questions) > 0 {
		view.Question = s.cfg.Questions[s.current].Public()
	}
	if s.outcome != nil {
		outcome := copyOutcome(*s.outcome)
		view.Outcome = &outcome
	}
	return view
}

func copyAnswers(in map[int]string) map[int]string {
	out := make(map[int]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyOutcome(o domain.FinishOutcome) domain.FinishOutcome {
	o.Answers = copyAnswers(o.Answers)
	return o
}

package app

import (
	"math/rand"
	"sync"
	"time"

	"timed-exam-service/internal/domain"
)

// Shuffler produces a fresh question order for every exam start.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffler() *Shuffler {
	return NewShufflerWithSeed(time.Now().UnixNano())
}

// NewShufflerWithSeed is used by tests that need a reproducible order.
func NewShufflerWithSeed(seed int64) *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle returns a uniformly permuted copy of questions (Fisher-Yates).
// The input slice is left untouched.
func (s *Shuffler) Shuffle(questions []domain.Question) []domain.Question {
	out := append([]domain.Question(nil), questions...)

	s.mu.Lock()
	s.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	return out
}

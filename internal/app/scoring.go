package app

import (
	"math"

	"timed-exam-service/internal/domain"
)

// Score awards 100/N points per correct answer and rounds the total once.
// Unanswered questions score zero; an empty sequence scores zero.
func Score(questions []domain.Question, answers map[int]string) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectOptionID {
			correct++
		}
	}
	return int(math.Round(float64(correct) * 100 / float64(len(questions))))
}

// Progress is the answered fraction of the exam, in [0,1].
func Progress(answered, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(answered) / float64(total)
}

// Package scoring computes quiz and classification scores. All functions
// are pure; the session engine calls them at finalization time.
package scoring

import (
	"math"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// CorrectCount counts positions where the recorded answer matches the
// correct index. model.NoAnswer (timeout) never counts as correct, and
// unanswered trailing questions are simply wrong.
func CorrectCount(answers, correct []int) int {
	n := 0
	for i, want := range correct {
		if i >= len(answers) {
			break
		}
		if answers[i] != model.NoAnswer && answers[i] == want {
			n++
		}
	}
	return n
}

// QuizScore returns round(100 × correct/total) as an integer in [0,100].
// An empty question list scores 0 rather than dividing by zero.
func QuizScore(answers, correct []int) int {
	total := len(correct)
	if total == 0 {
		return 0
	}
	return percent(CorrectCount(answers, correct), total)
}

// Corrections returns the per-question correctness booleans carried by
// the completion notification.
func Corrections(answers, correct []int) []bool {
	out := make([]bool, len(correct))
	for i, want := range correct {
		if i < len(answers) && answers[i] != model.NoAnswer && answers[i] == want {
			out[i] = true
		}
	}
	return out
}

// ClassificationScore grades assignments against the fixed 12-term
// catalog using the same rounding rule as QuizScore. Unassigned terms
// count as incorrect, so a forced validation of a partial board still
// scores over all 12 terms. The returned map records per-term
// correctness for visual feedback.
func ClassificationScore(assignments map[string]model.ClassificationCategory) (int, map[string]bool) {
	terms := model.ClassificationTerms()
	perTerm := make(map[string]bool, len(terms))

	n := 0
	for _, t := range terms {
		ok := assignments[t.ID] == t.CorrectCategory
		perTerm[t.ID] = ok
		if ok {
			n++
		}
	}
	return percent(n, len(terms)), perTerm
}

func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}

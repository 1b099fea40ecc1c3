package scoring

import (
	"testing"

	"github.com/alexpaac/testrh-backend/internal/model"
)

func TestQuizScore(t *testing.T) {
	tests := []struct {
		name    string
		answers []int
		correct []int
		want    int
	}{
		{"all correct", []int{0, 1, 2}, []int{0, 1, 2}, 100},
		{"two of three", []int{0, 1, -1}, []int{0, 1, 2}, 67},
		{"all wrong", []int{1, 2, 0}, []int{0, 1, 2}, 0},
		{"no questions", nil, nil, 0},
		{"unanswered tail counts as wrong", []int{0}, []int{0, 1, 2}, 33},
		{"half rounds up", []int{0, 1, -1, -1}, []int{0, 1, 2, 2}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuizScore(tt.answers, tt.correct); got != tt.want {
				t.Errorf("QuizScore(%v, %v) = %d, want %d", tt.answers, tt.correct, got, tt.want)
			}
		})
	}
}

func TestNoAnswerNeverCorrect(t *testing.T) {
	// A question whose "correct" index could never equal -1, but guard the
	// sentinel explicitly anyway.
	answers := []int{model.NoAnswer, model.NoAnswer}
	correct := []int{model.NoAnswer, 0}
	if got := CorrectCount(answers, correct); got != 0 {
		t.Fatalf("CorrectCount = %d, want 0", got)
	}
}

func TestCorrections(t *testing.T) {
	got := Corrections([]int{0, 2, -1}, []int{0, 1, 2})
	want := []bool{true, false, false}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Corrections[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestClassificationScoreFullBoard(t *testing.T) {
	assignments := make(map[string]model.ClassificationCategory)
	for _, term := range model.ClassificationTerms() {
		assignments[term.ID] = term.CorrectCategory
	}

	score, perTerm := ClassificationScore(assignments)
	if score != 100 {
		t.Fatalf("score = %d, want 100", score)
	}
	for id, ok := range perTerm {
		if !ok {
			t.Errorf("term %s marked incorrect on a perfect board", id)
		}
	}
}

func TestClassificationScorePartialBoard(t *testing.T) {
	// 5 correct placements out of 12 → round(5/12×100) = 42, the forced
	// validation scenario.
	terms := model.ClassificationTerms()
	assignments := make(map[string]model.ClassificationCategory)
	for i := 0; i < 5; i++ {
		assignments[terms[i].ID] = terms[i].CorrectCategory
	}
	// Three more assigned but wrong; the remaining four left unassigned.
	for i := 5; i < 8; i++ {
		wrong := model.CategoryBalanceAsset
		if terms[i].CorrectCategory == model.CategoryBalanceAsset {
			wrong = model.CategoryIncomeExpense
		}
		assignments[terms[i].ID] = wrong
	}

	score, perTerm := ClassificationScore(assignments)
	if score != 42 {
		t.Fatalf("score = %d, want 42", score)
	}
	correct := 0
	for _, ok := range perTerm {
		if ok {
			correct++
		}
	}
	if correct != 5 {
		t.Fatalf("perTerm correct = %d, want 5", correct)
	}
	if len(perTerm) != model.ClassificationTermCount {
		t.Fatalf("perTerm covers %d terms, want %d", len(perTerm), model.ClassificationTermCount)
	}
}

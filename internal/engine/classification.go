package engine

import (
	"errors"

	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/scoring"
)

var (
	// ErrUnknownTerm rejects an assignment for a term outside the catalog.
	ErrUnknownTerm = errors.New("unknown classification term")
	// ErrUnknownCategory rejects an assignment to an invalid drop target.
	ErrUnknownCategory = errors.New("unknown classification category")
	// ErrBoardIncomplete rejects manual validation before all terms are
	// placed. Forced validation at expiry bypasses it.
	ErrBoardIncomplete = errors.New("classification board incomplete")
)

// classificationPhase holds the in-flight state of the mini-game. The
// owning runtime serializes all access.
type classificationPhase struct {
	terms       map[string]model.ClassificationTerm
	assignments map[string]model.ClassificationCategory
	countdown   *Countdown
	validated   bool
	result      *model.ClassificationResult
	// resultWait counts down the on-screen result pause before the
	// attempt finalizes.
	resultWait *Countdown
}

func newClassificationPhase(budgetSeconds int) *classificationPhase {
	terms := make(map[string]model.ClassificationTerm, model.ClassificationTermCount)
	for _, t := range model.ClassificationTerms() {
		terms[t.ID] = t
	}
	return &classificationPhase{
		terms:       terms,
		assignments: make(map[string]model.ClassificationCategory),
		countdown:   NewCountdown(budgetSeconds),
	}
}

// Assign places or re-places a term on a category. Re-assigning an
// already placed term simply moves it.
func (p *classificationPhase) Assign(termID string, category model.ClassificationCategory) error {
	if _, ok := p.terms[termID]; !ok {
		return ErrUnknownTerm
	}
	if !model.KnownCategory(category) {
		return ErrUnknownCategory
	}
	p.assignments[termID] = category
	return nil
}

// Complete reports whether every catalog term has been assigned.
func (p *classificationPhase) Complete() bool {
	return len(p.assignments) == len(p.terms)
}

// Validate grades the board. Manual validation requires a complete
// board; the phase countdown forces validation regardless.
func (p *classificationPhase) Validate(forced bool, resultSeconds int) (*model.ClassificationResult, error) {
	if p.validated {
		return p.result, nil
	}
	if !forced && !p.Complete() {
		return nil, ErrBoardIncomplete
	}

	score, perTerm := scoring.ClassificationScore(p.assignments)
	assignments := make(map[string]model.ClassificationCategory, len(p.assignments))
	for id, c := range p.assignments {
		assignments[id] = c
	}

	p.validated = true
	p.result = &model.ClassificationResult{
		Assignments: assignments,
		PerTerm:     perTerm,
		Score:       score,
	}
	p.resultWait = NewCountdown(resultSeconds)
	return p.result, nil
}

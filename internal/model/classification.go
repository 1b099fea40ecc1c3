package model

import "time"

// ClassificationCategory is one of the four drop targets of the
// classification mini-game: two balance-sheet sides and two income
// statement sides.
type ClassificationCategory string

const (
	CategoryBalanceAsset     ClassificationCategory = "bilan-actif"
	CategoryBalanceLiability ClassificationCategory = "bilan-passif"
	CategoryIncomeRevenue    ClassificationCategory = "resultat-produits"
	CategoryIncomeExpense    ClassificationCategory = "resultat-charges"
)

// KnownCategory reports whether c is a valid drop target.
func KnownCategory(c ClassificationCategory) bool {
	switch c {
	case CategoryBalanceAsset, CategoryBalanceLiability, CategoryIncomeRevenue, CategoryIncomeExpense:
		return true
	}
	return false
}

// ClassificationTerm is one entry of the fixed accounting-term catalog.
type ClassificationTerm struct {
	ID              string                 `json:"id"`
	Term            string                 `json:"term"`
	CorrectCategory ClassificationCategory `json:"-"`
}

// ClassificationTermCount is the size of the fixed catalog.
const ClassificationTermCount = 12

// classificationCatalog is the fixed 12-term catalog presented during the
// classification phase.
var classificationCatalog = []ClassificationTerm{
	{ID: "1", Term: "Capital", CorrectCategory: CategoryBalanceLiability},
	{ID: "2", Term: "Créances clients", CorrectCategory: CategoryBalanceAsset},
	{ID: "3", Term: "Découvert bancaire", CorrectCategory: CategoryBalanceLiability},
	{ID: "4", Term: "Matériel informatique", CorrectCategory: CategoryBalanceAsset},
	{ID: "5", Term: "Chiffre d'affaires", CorrectCategory: CategoryIncomeRevenue},
	{ID: "6", Term: "Salaires", CorrectCategory: CategoryIncomeExpense},
	{ID: "7", Term: "Fournisseurs", CorrectCategory: CategoryBalanceLiability},
	{ID: "8", Term: "Stock de marchandises", CorrectCategory: CategoryBalanceAsset},
	{ID: "9", Term: "Charges sociales", CorrectCategory: CategoryIncomeExpense},
	{ID: "10", Term: "Produits financiers", CorrectCategory: CategoryIncomeRevenue},
	{ID: "11", Term: "Emprunts bancaires", CorrectCategory: CategoryBalanceLiability},
	{ID: "12", Term: "Banque", CorrectCategory: CategoryBalanceAsset},
}

// ClassificationTerms returns a copy of the fixed catalog.
func ClassificationTerms() []ClassificationTerm {
	out := make([]ClassificationTerm, len(classificationCatalog))
	copy(out, classificationCatalog)
	return out
}

// ClassificationResult is the outcome of a validated classification
// phase. Assignments may be partial when validation was forced by the
// phase countdown.
type ClassificationResult struct {
	Assignments map[string]ClassificationCategory `json:"assignments"`
	PerTerm     map[string]bool                   `json:"per_term"`
	Score       int                               `json:"score"`
	CompletedAt time.Time                         `json:"completed_at"`
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
)

func newImportService(maxRows int) *ImportService {
	return &ImportService{
		cfg: &config.Config{MaxImportRows: maxRows},
		log: zerolog.Nop(),
	}
}

const importHeader = "question,choix1,choix2,choix3,bonne_reponse\n"

func TestImportCSVRowCap(t *testing.T) {
	svc := newImportService(3)

	// Four data rows against a cap of three: rejected regardless of
	// whether the rows would have parsed.
	valid := importHeader + strings.Repeat("Q,A,B,C,choix1\n", 4)
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(valid)); !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("valid rows over cap: err = %v, want ErrTooManyRows", err)
	}

	// Invalid rows count toward the cap too, so a junk file cannot grow
	// the error report without bound.
	invalid := importHeader + strings.Repeat(",A,B,C,choix1\n", 4)
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(invalid)); !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("invalid rows over cap: err = %v, want ErrTooManyRows", err)
	}
}

func TestImportCSVNoValidRows(t *testing.T) {
	svc := newImportService(10)

	file := importHeader + strings.Repeat(",A,B,C,choix1\n", 3)
	if _, err := svc.ImportCSV(context.Background(), strings.NewReader(file)); err == nil {
		t.Fatal("a file with no valid row must be rejected")
	}
}

func TestParseHeader(t *testing.T) {
	cols, err := parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse", "catégorie", "temps"})
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if cols.question != 0 || cols.answer != 4 || cols.category != 5 || cols.timeLimit != 6 {
		t.Fatalf("columns = %+v", cols)
	}

	// Optional columns may be absent.
	cols, err = parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse"})
	if err != nil {
		t.Fatalf("parseHeader without optional columns: %v", err)
	}
	if cols.category != -1 || cols.timeLimit != -1 {
		t.Fatalf("optional columns = %+v, want -1", cols)
	}

	// A missing required column fails.
	if _, err := parseHeader([]string{"question", "choix1", "choix2", "bonne_reponse"}); err == nil {
		t.Fatal("parseHeader must reject a missing choix3")
	}
	if _, err := parseHeader([]string{"choix1", "choix2", "choix3", "bonne_reponse"}); err == nil {
		t.Fatal("parseHeader must reject a missing question column")
	}
}

func TestParseHeaderAcceptsUnaccentedCategory(t *testing.T) {
	cols, err := parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse", "categorie"})
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if cols.category != 5 {
		t.Fatalf("category column = %d, want 5", cols.category)
	}
}

func TestParseRow(t *testing.T) {
	cols, err := parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse", "catégorie", "temps"})
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}

	q, msg := parseRow(cols, []string{"Qu'est-ce qu'un bilan ?", "A", "B", "C", "choix2", "Comptabilité", "45"})
	if msg != "" {
		t.Fatalf("parseRow: %s", msg)
	}
	if q.CorrectAnswer != 1 {
		t.Fatalf("CorrectAnswer = %d, want 1", q.CorrectAnswer)
	}
	if q.Category != "Comptabilité" || q.TimeLimit != 45 {
		t.Fatalf("row = %+v", q)
	}

	tests := []struct {
		name   string
		record []string
	}{
		{"empty question", []string{"", "A", "B", "C", "choix1", "", ""}},
		{"empty choice", []string{"Q", "A", "", "C", "choix1", "", ""}},
		{"bad answer token", []string{"Q", "A", "B", "C", "B", "", ""}},
		{"answer text instead of column", []string{"Q", "A", "B", "C", "choix4", "", ""}},
		{"non-numeric time", []string{"Q", "A", "B", "C", "choix1", "", "abc"}},
		{"time below minimum", []string{"Q", "A", "B", "C", "choix1", "", "2"}},
		{"time above maximum", []string{"Q", "A", "B", "C", "choix1", "", "301"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, msg := parseRow(cols, tt.record); msg == "" {
				t.Errorf("parseRow(%v) accepted invalid input", tt.record)
			}
		})
	}
}

func TestParseRowTrimsWhitespace(t *testing.T) {
	cols, _ := parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse"})
	q, msg := parseRow(cols, []string{"  Q  ", " A ", " B ", " C ", " CHOIX3 "})
	if msg != "" {
		t.Fatalf("parseRow: %s", msg)
	}
	if q.Prompt != "Q" || q.Choices[0] != "A" || q.CorrectAnswer != 2 {
		t.Fatalf("row = %+v", q)
	}
}

func TestParseRowShortRecord(t *testing.T) {
	cols, _ := parseHeader([]string{"question", "choix1", "choix2", "choix3", "bonne_reponse", "temps"})
	// Trailing optional column omitted from the record entirely.
	q, msg := parseRow(cols, []string{"Q", "A", "B", "C", "choix1"})
	if msg != "" {
		t.Fatalf("parseRow: %s", msg)
	}
	if q.TimeLimit != 0 {
		t.Fatalf("TimeLimit = %d, want 0 (quiz default)", q.TimeLimit)
	}
	if !strings.HasPrefix(q.Prompt, "Q") {
		t.Fatalf("prompt = %q", q.Prompt)
	}
}

package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
)

// ErrTooManyRows refuses imports above the configured row cap.
var ErrTooManyRows = errors.New("too many rows in import file")

// RowError points at one invalid line of an import file.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult reports what an import produced.
type ImportResult struct {
	Created     int         `json:"created"`
	QuestionIDs []uuid.UUID `json:"question_ids"`
	Errors      []RowError  `json:"errors,omitempty"`
}

// ImportService parses question CSV files into the question bank. The
// expected header is question,choix1,choix2,choix3,bonne_reponse with
// optional catégorie and temps columns; bonne_reponse names the correct
// column.
type ImportService struct {
	questions *repository.QuestionRepository
	cfg       *config.Config
	log       zerolog.Logger
}

// NewImportService creates a new ImportService.
func NewImportService(questions *repository.QuestionRepository, cfg *config.Config, log zerolog.Logger) *ImportService {
	return &ImportService{
		questions: questions,
		cfg:       cfg,
		log:       log.With().Str("component", "import_service").Logger(),
	}
}

// columns maps header names to indexes. Optional columns are -1.
type importColumns struct {
	question  int
	choices   [model.QuestionChoiceCount]int
	answer    int
	category  int
	timeLimit int
}

// ImportCSV parses and inserts the file. Rows with errors are reported
// and skipped; valid rows are inserted in one bulk write. A file with no
// valid row at all is an error.
func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var pending []model.Question
	line := 1
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		// Every data row counts toward the cap, valid or not, so a file
		// full of bad rows cannot produce an unbounded error report.
		rows++
		if rows > s.cfg.MaxImportRows {
			return nil, ErrTooManyRows
		}
		if err != nil {
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		q, rowErr := parseRow(cols, record)
		if rowErr != "" {
			result.Errors = append(result.Errors, RowError{Line: line, Message: rowErr})
			continue
		}
		pending = append(pending, q)
	}

	if len(pending) == 0 {
		return nil, fmt.Errorf("no valid rows in import file")
	}

	ids, err := s.questions.BulkCreate(ctx, pending)
	if err != nil {
		return nil, fmt.Errorf("bulk insert: %w", err)
	}
	result.Created = len(ids)
	result.QuestionIDs = ids
	s.log.Info().Int("created", result.Created).Int("rejected", len(result.Errors)).Msg("question import finished")
	return result, nil
}

func parseHeader(header []string) (*importColumns, error) {
	cols := &importColumns{question: -1, answer: -1, category: -1, timeLimit: -1}
	for i := range cols.choices {
		cols.choices[i] = -1
	}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "question":
			cols.question = i
		case "choix1":
			cols.choices[0] = i
		case "choix2":
			cols.choices[1] = i
		case "choix3":
			cols.choices[2] = i
		case "bonne_reponse":
			cols.answer = i
		case "catégorie", "categorie":
			cols.category = i
		case "temps":
			cols.timeLimit = i
		}
	}

	if cols.question < 0 || cols.answer < 0 {
		return nil, fmt.Errorf("missing required columns: header must contain question, choix1, choix2, choix3, bonne_reponse")
	}
	for _, idx := range cols.choices {
		if idx < 0 {
			return nil, fmt.Errorf("missing required columns: header must contain question, choix1, choix2, choix3, bonne_reponse")
		}
	}
	return cols, nil
}

func parseRow(cols *importColumns, record []string) (model.Question, string) {
	field := func(i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	q := model.Question{
		Prompt:  field(cols.question),
		Choices: make([]string, model.QuestionChoiceCount),
	}
	if q.Prompt == "" {
		return q, "question is empty"
	}
	for i, idx := range cols.choices {
		q.Choices[i] = field(idx)
		if q.Choices[i] == "" {
			return q, fmt.Sprintf("choix%d is empty", i+1)
		}
	}

	// bonne_reponse names the correct column, not its text.
	switch strings.ToLower(field(cols.answer)) {
	case "choix1":
		q.CorrectAnswer = 0
	case "choix2":
		q.CorrectAnswer = 1
	case "choix3":
		q.CorrectAnswer = 2
	default:
		return q, "bonne_reponse must be one of choix1, choix2, choix3"
	}

	q.Category = field(cols.category)

	if raw := field(cols.timeLimit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 5 || n > model.MaxSecondsPerQuestion {
			return q, fmt.Sprintf("temps must be an integer between 5 and %d seconds", model.MaxSecondsPerQuestion)
		}
		q.TimeLimit = n
	}

	return q, ""
}

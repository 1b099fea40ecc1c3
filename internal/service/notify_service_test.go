package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
)

func completedSession() *model.TestSession {
	score := 67
	now := time.Now()
	return &model.TestSession{
		ID:     uuid.New(),
		QuizID: uuid.New(),
		Candidate: model.CandidateInfo{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Email:      "ada@exemple.fr",
			Manager:    "Babbage",
			Department: "Finance",
			Level:      model.LevelC3,
			Role:       "Analyste",
		},
		Status:         model.SessionStatusCompleted,
		StartedAt:      now.Add(-3 * time.Minute),
		CompletedAt:    &now,
		CompletionTime: 178,
		Answers:        []int{0, 1, model.NoAnswer},
		Score:          &score,
	}
}

func TestNotifyCompletionPayload(t *testing.T) {
	received := make(chan CompletionPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %s", ct)
		}
		var p CompletionPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		received <- p
	}))
	defer srv.Close()

	s := NewNotifyService(srv.URL, srv.Client(), zerolog.Nop())
	s.NotifyCompletion(completedSession(), "Test comptabilité", []bool{true, true, false})

	select {
	case p := <-received:
		if p.Prenom != "Ada" || p.Nom != "Lovelace" || p.Pole != "Finance" || p.Niveau != "C3" {
			t.Fatalf("identity fields = %+v", p)
		}
		if p.Questionnaire != "Test comptabilité" {
			t.Fatalf("questionnaire = %q", p.Questionnaire)
		}
		if p.Score != 67 || p.Duree != 178 {
			t.Fatalf("score/duree = %d/%d", p.Score, p.Duree)
		}
		if len(p.Reponses) != 3 || p.Reponses[2] != model.NoAnswer {
			t.Fatalf("reponses = %v", p.Reponses)
		}
		if len(p.Corrections) != 3 || p.Corrections[2] {
			t.Fatalf("corrections = %v", p.Corrections)
		}
	case <-time.After(time.Second):
		t.Fatal("webhook never received")
	}
}

func TestNotifyCompletionDisabledWithoutURL(t *testing.T) {
	// Must be a silent no-op, not a panic or an error log storm.
	s := NewNotifyService("", nil, zerolog.Nop())
	s.NotifyCompletion(completedSession(), "Quiz", nil)
}

func TestNotifyCompletionSwallowsServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewNotifyService(srv.URL, srv.Client(), zerolog.Nop())
	// Failure must never propagate; the candidate's attempt goes on.
	s.NotifyCompletion(completedSession(), "Quiz", nil)
}

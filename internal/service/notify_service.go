package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alexpaac/testrh-backend/internal/model"
)

// CompletionPayload is the webhook body sent when a candidate finishes
// the quiz part of an attempt. Field names match what the receiving HR
// automation expects.
type CompletionPayload struct {
	Prenom        string `json:"prenom"`
	Nom           string `json:"nom"`
	Email         string `json:"email"`
	Manager       string `json:"manager"`
	Pole          string `json:"pole"`
	Niveau        string `json:"niveau"`
	Role          string `json:"role"`
	Questionnaire string `json:"questionnaire"`
	Reponses      []int  `json:"reponses"`
	Corrections   []bool `json:"corrections"`
	Score         int    `json:"score"`
	Duree         int    `json:"duree"`
}

// NotifyService posts completion notifications to the configured
// webhook. Delivery is fire-and-forget: failures are logged, never
// surfaced to the candidate.
type NotifyService struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewNotifyService creates a NotifyService. An empty URL disables it.
func NewNotifyService(url string, client *http.Client, log zerolog.Logger) *NotifyService {
	if client == nil {
		client = http.DefaultClient
	}
	return &NotifyService{
		url:    url,
		client: client,
		log:    log.With().Str("component", "notify_service").Logger(),
	}
}

// NotifyCompletion builds and posts the webhook payload.
func (s *NotifyService) NotifyCompletion(session *model.TestSession, quizName string, corrections []bool) {
	if s.url == "" {
		return
	}

	score := 0
	if session.Score != nil {
		score = *session.Score
	}
	payload := CompletionPayload{
		Prenom:        session.Candidate.FirstName,
		Nom:           session.Candidate.LastName,
		Email:         session.Candidate.Email,
		Manager:       session.Candidate.Manager,
		Pole:          session.Candidate.Department,
		Niveau:        string(session.Candidate.Level),
		Role:          session.Candidate.Role,
		Questionnaire: quizName,
		Reponses:      session.Answers,
		Corrections:   corrections,
		Score:         score,
		Duree:         session.CompletionTime,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal webhook payload")
		return
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		s.log.Error().Err(err).Msg("build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.log.Error().Int("status", resp.StatusCode).Str("session_id", session.ID.String()).Msg("webhook rejected")
		return
	}
	s.log.Info().Str("session_id", session.ID.String()).Int("score", score).Msg("completion notification delivered")
}

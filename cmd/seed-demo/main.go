package main

import (
	"context"
	"fmt"
	"time"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/database"
	"github.com/alexpaac/testrh-backend/internal/logger"
	"github.com/alexpaac/testrh-backend/internal/model"
	"github.com/alexpaac/testrh-backend/internal/repository"
	"github.com/alexpaac/testrh-backend/internal/service"
)

// Seeds a demo quiz with a small accounting question bank plus a
// candidate roster, so the portal is usable right after migrate.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	candidateRepo := repository.NewCandidateRepository(pool)

	fmt.Println("=== Seeding demo quiz ===")

	questions := []model.Question{
		{Prompt: "Quel document enregistre toutes les opérations comptables par ordre chronologique ?", Choices: []string{"Le grand livre", "Le journal", "La balance"}, CorrectAnswer: 1, Category: "comptabilité"},
		{Prompt: "Un achat de marchandises à crédit augmente :", Choices: []string{"Les dettes fournisseurs", "Les créances clients", "Le capital"}, CorrectAnswer: 0, Category: "comptabilité"},
		{Prompt: "L'amortissement constate :", Choices: []string{"Une dette", "La dépréciation d'une immobilisation", "Un produit"}, CorrectAnswer: 1, Category: "comptabilité"},
		{Prompt: "La TVA collectée figure :", Choices: []string{"Au passif du bilan", "À l'actif du bilan", "En charges"}, CorrectAnswer: 0, Category: "fiscalité"},
		{Prompt: "Le résultat net de l'exercice apparaît :", Choices: []string{"Uniquement au bilan", "Uniquement au compte de résultat", "Au bilan et au compte de résultat"}, CorrectAnswer: 2, Category: "comptabilité"},
		{Prompt: "Une provision est :", Choices: []string{"Une charge certaine", "Un passif probable", "Un produit exceptionnel"}, CorrectAnswer: 1, Category: "comptabilité"},
		{Prompt: "Le fonds de roulement se calcule par :", Choices: []string{"Capitaux permanents - actif immobilisé", "Actif circulant - stocks", "Trésorerie - dettes"}, CorrectAnswer: 0, Category: "analyse financière"},
		{Prompt: "Un compte de produit est soldé par :", Choices: []string{"Le bilan", "Le compte de résultat", "Le journal des achats"}, CorrectAnswer: 1, Category: "comptabilité"},
		{Prompt: "Les capitaux propres comprennent :", Choices: []string{"Les emprunts bancaires", "Le capital et les réserves", "Les dettes fournisseurs"}, CorrectAnswer: 1, Category: "comptabilité"},
		{Prompt: "La balance est équilibrée quand :", Choices: []string{"Total débits = total crédits", "L'actif dépasse le passif", "Le résultat est positif"}, CorrectAnswer: 0, Category: "comptabilité", TimeLimit: 90},
	}

	questionIDs := make([]model.Question, 0, len(questions))
	for i := range questions {
		if err := questionRepo.Create(ctx, &questions[i]); err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("Failed to create question")
		}
		questionIDs = append(questionIDs, questions[i])
	}
	fmt.Printf("Created %d questions\n", len(questions))

	quiz := &model.Quiz{
		Name:                  "Évaluation comptabilité générale",
		Description:           "Parcours de démonstration : 10 questions puis jeu de classement.",
		AccessCode:            "DEMO2026",
		Status:                model.QuizStatusActive,
		SecondsPerQuestion:    60,
		HasClassificationGame: true,
	}
	for i := range questionIDs {
		quiz.QuestionIDs = append(quiz.QuestionIDs, questionIDs[i].ID)
	}
	if err := quizRepo.Create(ctx, quiz); err != nil {
		log.Fatal().Err(err).Msg("Failed to create quiz")
	}
	fmt.Printf("Created quiz %s (code %s)\n", quiz.ID, quiz.AccessCode)

	roster := []model.Candidate{
		{FirstName: "Jean", LastName: "Dupont", Email: "jean.dupont@example.com", Manager: "Claire Martin", Department: "Finance", Level: model.LevelC1, Role: "Comptable"},
		{FirstName: "Marie", LastName: "Laurent", Email: "marie.laurent@example.com", Manager: "Claire Martin", Department: "Finance", Level: model.LevelC2, Role: "Contrôleuse de gestion"},
		{FirstName: "Paul", LastName: "Moreau", Email: "paul.moreau@example.com", Manager: "Hugo Bernard", Department: "Audit", Level: model.LevelC3, Role: "Auditeur senior"},
		{FirstName: "Sophie", LastName: "Petit", Email: "sophie.petit@example.com", Manager: "Hugo Bernard", Department: "Audit", Level: model.LevelC1, Role: "Auditrice junior"},
		{FirstName: "Lucas", LastName: "Roux", Email: "lucas.roux@example.com", Manager: "Claire Martin", Department: "Finance", Level: model.LevelC2, Role: "Trésorier"},
	}

	successCount := 0
	for i := range roster {
		roster[i].AccessCode = service.GenerateAccessCode()
		if err := candidateRepo.Create(ctx, &roster[i]); err != nil {
			fmt.Printf("Error creating candidate %s %s: %v\n", roster[i].FirstName, roster[i].LastName, err)
			continue
		}
		successCount++
		fmt.Printf("  %s %s → code %s\n", roster[i].FirstName, roster[i].LastName, roster[i].AccessCode)
	}

	fmt.Printf("\nSeed completed! Quiz code %s, %d/%d candidates.\n", quiz.AccessCode, successCount, len(roster))
}

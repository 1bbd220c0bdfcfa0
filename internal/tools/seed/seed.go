package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"quizapi/internal/domain"
	"quizapi/internal/security"
)

const (
	adminEmail    = "admin@quizapi.local"
	adminPassword = "admin12345"
)

// Run loads the default admin account and a starter set of quizzes.
// It is idempotent: existing rows are left alone.
func Run(db *gorm.DB, logger *slog.Logger) error {
	if err := seedAdmin(db, logger); err != nil {
		return err
	}
	return seedQuizzes(db, logger)
}

func seedAdmin(db *gorm.DB, logger *slog.Logger) error {
	var existing domain.User
	err := db.Where("email = ?", adminEmail).First(&existing).Error
	if err == nil {
		logger.Info("admin account already present", "email", adminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("seed admin: %w", err)
	}

	hash, err := security.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	admin := domain.User{
		Email:          adminEmail,
		Name:           "Admin",
		PasswordHash:   hash,
		IsActive:       true,
		IsAdmin:        true,
		RegisteredAt:   time.Now().UTC(),
		AttemptHistory: datatypes.NewJSONType([]domain.AttemptSummary{}),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	logger.Info("admin account created", "email", adminEmail)
	return nil
}

func seedQuizzes(db *gorm.DB, logger *slog.Logger) error {
	var count int64
	if err := db.Model(&domain.Quiz{}).Count(&count).Error; err != nil {
		return fmt.Errorf("seed quizzes: %w", err)
	}
	if count > 0 {
		logger.Info("quizzes already present", "count", count)
		return nil
	}

	for _, quiz := range sampleQuizzes() {
		if err := db.Create(&quiz).Error; err != nil {
			return fmt.Errorf("seed quizzes: %w", err)
		}
	}
	logger.Info("sample quizzes created", "count", len(sampleQuizzes()))
	return nil
}

func sampleQuizzes() []domain.Quiz {
	return []domain.Quiz{
		{
			Title:            "General Knowledge",
			Description:      "A warm-up across geography, science, and history.",
			Difficulty:       "easy",
			TimeLimitSeconds: 300,
			Questions: datatypes.NewJSONType([]domain.Question{
				{
					Text: "What is the capital of France?",
					Options: []domain.Option{
						{Text: "London"},
						{Text: "Berlin"},
						{Text: "Paris", IsCorrect: true},
						{Text: "Madrid"},
					},
				},
				{
					Text: "Which planet is known as the Red Planet?",
					Options: []domain.Option{
						{Text: "Venus"},
						{Text: "Mars", IsCorrect: true},
						{Text: "Jupiter"},
						{Text: "Saturn"},
					},
				},
				{
					Text: "In what year did World War II end?",
					Options: []domain.Option{
						{Text: "1943"},
						{Text: "1944"},
						{Text: "1945", IsCorrect: true},
						{Text: "1946"},
					},
				},
			}),
		},
		{
			Title:            "Programming Basics",
			Description:      "Fundamentals every developer should know.",
			Difficulty:       "medium",
			TimeLimitSeconds: 600,
			Questions: datatypes.NewJSONType([]domain.Question{
				{
					Text: "Which of these is not a programming language?",
					Options: []domain.Option{
						{Text: "Python"},
						{Text: "Java"},
						{Text: "HTML", IsCorrect: true},
						{Text: "Go"},
					},
				},
				{
					Text: "What does HTTP stand for?",
					Options: []domain.Option{
						{Text: "HyperText Transfer Protocol", IsCorrect: true},
						{Text: "High Transfer Text Protocol"},
						{Text: "HyperText Transmission Process"},
						{Text: "Home Tool Transfer Protocol"},
					},
				},
				{
					Text:  "Which of the following are compiled languages?",
					Multi: true,
					Options: []domain.Option{
						{Text: "Go", IsCorrect: true},
						{Text: "Rust", IsCorrect: true},
						{Text: "JavaScript"},
						{Text: "Python"},
					},
				},
			}),
		},
		{
			Title:            "Mathematics Challenge",
			Description:      "Arithmetic and algebra under time pressure.",
			Difficulty:       "hard",
			TimeLimitSeconds: 900,
			Questions: datatypes.NewJSONType([]domain.Question{
				{
					Text: "What is 12 x 12?",
					Options: []domain.Option{
						{Text: "124"},
						{Text: "144", IsCorrect: true},
						{Text: "148"},
						{Text: "164"},
					},
				},
				{
					Text: "What is the square root of 169?",
					Options: []domain.Option{
						{Text: "11"},
						{Text: "12"},
						{Text: "13", IsCorrect: true},
						{Text: "14"},
					},
				},
			}),
		},
	}
}

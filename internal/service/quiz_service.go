package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"quizapi/internal/domain"
	"quizapi/internal/repository"

	"gorm.io/datatypes"
)

const quizMissNamespace = "quiz.not_found"

// QuizService offers quiz reads plus the admin-only write operations.
// Known-missing quiz IDs are remembered in the miss cache so repeated
// lookups of deleted quizzes skip the database.
type QuizService struct {
	quizzes   repository.QuizRepository
	missCache MissCacheStore
	missTTL   time.Duration
	logger    *slog.Logger
}

func NewQuizService(quizzes repository.QuizRepository, missCache MissCacheStore, missTTL time.Duration, logger *slog.Logger) *QuizService {
	if missCache == nil {
		missCache = NewNoopMissCacheStore()
	}
	return &QuizService{quizzes: quizzes, missCache: missCache, missTTL: missTTL, logger: logger}
}

type QuizInput struct {
	Title            string
	Description      string
	Difficulty       string
	TimeLimitSeconds int
}

func (s *QuizService) Get(ctx context.Context, id uint) (*domain.Quiz, error) {
	key := strconv.FormatUint(uint64(id), 10)
	cached, err := s.missCache.Contains(ctx, quizMissNamespace, key)
	if err != nil {
		s.logger.WarnContext(ctx, "quiz miss cache unavailable", "error", err)
	} else if cached {
		return nil, repository.ErrQuizNotFound
	}

	quiz, err := s.quizzes.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			if cerr := s.missCache.Remember(ctx, quizMissNamespace, key, s.missTTL); cerr != nil {
				s.logger.WarnContext(ctx, "quiz miss cache write failed", "error", cerr)
			}
		}
		return nil, err
	}
	return quiz, nil
}

func (s *QuizService) List(page repository.PageRequest) (repository.PageResult[domain.Quiz], error) {
	return s.quizzes.ListPaged(page)
}

func (s *QuizService) Count() (int64, error) {
	return s.quizzes.Count()
}

func (s *QuizService) Create(ctx context.Context, in QuizInput, questions []domain.Question) (*domain.Quiz, error) {
	for _, q := range questions {
		if err := validateQuestion(q); err != nil {
			return nil, err
		}
	}
	quiz := &domain.Quiz{
		Title:            in.Title,
		Description:      in.Description,
		Difficulty:       in.Difficulty,
		TimeLimitSeconds: in.TimeLimitSeconds,
		Questions:        datatypes.NewJSONType(questions),
	}
	if err := s.quizzes.Create(quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	s.invalidateMisses(ctx)
	return quiz, nil
}

func (s *QuizService) Update(ctx context.Context, id uint, in QuizInput) (*domain.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	quiz.Title = in.Title
	quiz.Description = in.Description
	quiz.Difficulty = in.Difficulty
	quiz.TimeLimitSeconds = in.TimeLimitSeconds
	if err := s.quizzes.Update(quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) Delete(ctx context.Context, id uint) error {
	if err := s.quizzes.Delete(id); err != nil {
		return err
	}
	s.invalidateMisses(ctx)
	return nil
}

func (s *QuizService) AddQuestion(ctx context.Context, id uint, q domain.Question) (*domain.Quiz, error) {
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	questions := append(quiz.Questions.Data(), q)
	quiz.Questions = datatypes.NewJSONType(questions)
	if err := s.quizzes.Update(quiz); err != nil {
		return nil, fmt.Errorf("add question: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id uint, index int, q domain.Question) (*domain.Quiz, error) {
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	questions := quiz.Questions.Data()
	if index < 0 || index >= len(questions) {
		return nil, ErrQuestionIndexOutOfRange
	}
	questions[index] = q
	quiz.Questions = datatypes.NewJSONType(questions)
	if err := s.quizzes.Update(quiz); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id uint, index int) (*domain.Quiz, error) {
	quiz, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	questions := quiz.Questions.Data()
	if index < 0 || index >= len(questions) {
		return nil, ErrQuestionIndexOutOfRange
	}
	questions = append(questions[:index], questions[index+1:]...)
	quiz.Questions = datatypes.NewJSONType(questions)
	if err := s.quizzes.Update(quiz); err != nil {
		return nil, fmt.Errorf("delete question: %w", err)
	}
	return quiz, nil
}

func (s *QuizService) invalidateMisses(ctx context.Context) {
	if err := s.missCache.Invalidate(ctx, quizMissNamespace); err != nil {
		s.logger.WarnContext(ctx, "quiz miss cache invalidation failed", "error", err)
	}
}

// validateQuestion enforces the question shape: at least two options,
// exactly one correct option for single-select, at least one for
// multi-select.
func validateQuestion(q domain.Question) error {
	if q.Text == "" {
		return fmt.Errorf("%w: question text required", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: at least two options required", ErrInvalidQuestion)
	}
	correct := 0
	for _, opt := range q.Options {
		if opt.Text == "" {
			return fmt.Errorf("%w: option text required", ErrInvalidQuestion)
		}
		if opt.IsCorrect {
			correct++
		}
	}
	if q.Multi {
		if correct < 1 {
			return fmt.Errorf("%w: at least one correct option required", ErrInvalidQuestion)
		}
	} else if correct != 1 {
		return fmt.Errorf("%w: exactly one correct option required", ErrInvalidQuestion)
	}
	return nil
}

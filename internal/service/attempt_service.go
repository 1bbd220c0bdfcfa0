package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quizapi/internal/domain"
	"quizapi/internal/observability"
	"quizapi/internal/repository"

	"gorm.io/datatypes"
)

// AttemptService scores submissions, persists attempts, and keeps the
// per-user aggregates in step with the attempt history.
type AttemptService struct {
	attempts repository.AttemptRepository
	quizzes  *QuizService
	users    repository.UserRepository
	logger   *slog.Logger
}

func NewAttemptService(attempts repository.AttemptRepository, quizzes *QuizService, users repository.UserRepository, logger *slog.Logger) *AttemptService {
	return &AttemptService{attempts: attempts, quizzes: quizzes, users: users, logger: logger}
}

// Submit grades the answers, stores the attempt, and refreshes the
// user's aggregates. Once the attempt row is written the submission is
// committed: an aggregate refresh failure is logged and counted but
// does not fail the call.
func (s *AttemptService) Submit(ctx context.Context, user *domain.User, quizID uint, answers []domain.Answer, timeTakenSeconds int) (*domain.Attempt, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		observability.RecordAttemptSubmission("rejected")
		return nil, err
	}

	score, correctCount := ScoreSubmission(quiz.Questions.Data(), answers)

	attempt := &domain.Attempt{
		UserID:           user.ID,
		QuizID:           quiz.ID,
		Answers:          datatypes.NewJSONType(answers),
		Score:            score,
		CorrectCount:     correctCount,
		CompletedAt:      time.Now().UTC(),
		TimeTakenSeconds: timeTakenSeconds,
	}
	if err := s.attempts.Create(attempt); err != nil {
		observability.RecordAttemptSubmission("error")
		return nil, fmt.Errorf("submit attempt: %w", err)
	}
	observability.RecordAttemptSubmission("accepted")

	if err := s.refreshAggregates(ctx, user, quiz); err != nil {
		observability.RecordAggregateFailure()
		s.logger.ErrorContext(ctx, "attempt saved but aggregate refresh failed",
			"user_id", user.ID, "attempt_id", attempt.ID, "error", err)
	}

	return attempt, nil
}

func (s *AttemptService) ListByUser(userID uint) ([]domain.Attempt, error) {
	return s.attempts.ListByUser(userID)
}

func (s *AttemptService) ListRecentByUser(userID uint, limit int) ([]domain.Attempt, error) {
	return s.attempts.ListRecentByUser(userID, limit)
}

func (s *AttemptService) Get(id uint) (*domain.Attempt, error) {
	return s.attempts.FindByID(id)
}

// refreshAggregates recomputes total, average, and the embedded
// history from the user's full attempt list rather than incrementally.
/// The attempt table is the source of truth: a write lost to a
// concurrent submission heals on the next recompute instead of
// dropping a history entry for good.
func (s *AttemptService) refreshAggregates(ctx context.Context, user *domain.User, quiz *domain.Quiz) error {
	all, err := s.attempts.ListByUser(user.ID)
	if err != nil {
		return fmt.Errorf("list attempts: %w", err)
	}
	total := len(all)
	average := 0.0
	if total > 0 {
		sum := 0.0
		for _, a := range all {
			sum += a.Score
		}
		average = round2(sum / float64(total))
	}

	// Quiz titles come from the history already stored on the user,
	// topped up with lookups for quizzes seen for the first time.
	titles := map[uint]string{quiz.ID: quiz.Title}
	for _, summary := range user.AttemptHistory.Data() {
		if _, ok := titles[summary.QuizID]; !ok {
			titles[summary.QuizID] = summary.QuizTitle
		}
	}

	// all is newest first; the history reads oldest to newest.
	history := make([]domain.AttemptSummary, 0, total)
	for i := total - 1; i >= 0; i-- {
		a := all[i]
		title, ok := titles[a.QuizID]
		if !ok {
			if q, qerr := s.quizzes.Get(ctx, a.QuizID); qerr == nil {
				title = q.Title
			}
			titles[a.QuizID] = title
		}
		history = append(history, domain.AttemptSummary{
			AttemptID:        a.ID,
			QuizID:           a.QuizID,
			QuizTitle:        title,
			Score:            a.Score,
			CompletedAt:      a.CompletedAt,
			TimeTakenSeconds: a.TimeTakenSeconds,
		})
	}

	if err := s.users.UpdateStats(user.ID, total, average, history); err != nil {
		return fmt.Errorf("update stats: %w", err)
	}
	user.TotalAttempts = total
	user.AverageScore = average
	user.AttemptHistory = datatypes.NewJSONType(history)
	return nil
}

package service

import (
	"errors"
	"fmt"
	"time"

	"quizapi/internal/domain"
	"quizapi/internal/repository"
)

// UserService covers profile management, account lifecycle, and the
// derived statistics endpoints.
type UserService struct {
	users    repository.UserRepository
	attempts repository.AttemptRepository
	quizzes  repository.QuizRepository
}

func NewUserService(users repository.UserRepository, attempts repository.AttemptRepository, quizzes repository.QuizRepository) *UserService {
	return &UserService{users: users, attempts: attempts, quizzes: quizzes}
}

type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UserStats augments the stored aggregates with figures derived from
// the most recent attempts.
type UserStats struct {
	TotalAttempts int                     `json:"total_attempts"`
	AverageScore  float64                 `json:"average_score"`
	BestScore     float64                 `json:"best_score"`
	RecentAverage float64                 `json:"recent_average"`
	RecentCount   int                     `json:"recent_count"`
	History       []domain.AttemptSummary `json:"history"`
}

type TimelinePoint struct {
	CompletedAt time.Time `json:"completed_at"`
	Score       float64   `json:"score"`
}

type Dashboard struct {
	TotalQuizzes     int64            `json:"total_quizzes"`
	CompletedQuizzes int              `json:"completed_quizzes"`
	TotalAttempts    int              `json:"total_attempts"`
	TotalMinutes     int              `json:"total_minutes"`
	AverageScore     float64          `json:"average_score"`
	RecentAttempts   []domain.Attempt `json:"recent_attempts"`
	ScoreTimeline    []TimelinePoint  `json:"score_timeline"`
}

func (s *UserService) Get(id uint) (*domain.User, error) {
	return s.users.FindByID(id)
}

func (s *UserService) UpdateProfile(id uint, update ProfileUpdate) (*domain.User, error) {
	if update.Name == nil && update.Email == nil {
		return nil, ErrNoUpdates
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email != user.Email {
			if _, err := s.users.FindByEmail(email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, repository.ErrUserNotFound) {
				return nil, fmt.Errorf("update profile: %w", err)
			}
			user.Email = email
		}
	}
	if update.Name != nil {
		user.Name = *update.Name
	}
	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// Deactivate marks the account inactive instead of deleting the row,
// so attempt history and aggregates survive.
func (s *UserService) Deactivate(id uint) error {
	return s.users.Deactivate(id, time.Now().UTC())
}

func (s *UserService) SetActive(id uint, active bool) error {
	return s.users.SetActive(id, active)
}

func (s *UserService) ListUsers(query repository.UserListQuery) (repository.PageResult[domain.User], error) {
	return s.users.ListPaged(query)
}

// Stats reports the stored aggregates plus the best score and the
// average over the last ten attempts.
func (s *UserService) Stats(user *domain.User) (*UserStats, error) {
	recent, err := s.attempts.ListRecentByUser(user.ID, 10)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}

	stats := &UserStats{
		TotalAttempts: user.TotalAttempts,
		AverageScore:  user.AverageScore,
		History:       user.AttemptHistory.Data(),
		RecentCount:   len(recent),
	}
	if stats.History == nil {
		stats.History = []domain.AttemptSummary{}
	}

	best := 0.0
	for _, summary := range stats.History {
		if summary.Score > best {
			best = summary.Score
		}
	}
	stats.BestScore = best

	if len(recent) > 0 {
		sum := 0.0
		for _, a := range recent {
			sum += a.Score
		}
		stats.RecentAverage = round2(sum / float64(len(recent)))
	}
	return stats, nil
}

// Dashboard assembles the home-screen view: quiz totals, time spent,
// the ten most recent attempts, and a chronological score timeline.
func (s *UserService) Dashboard(user *domain.User) (*Dashboard, error) {
	totalQuizzes, err := s.quizzes.Count()
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	attempts, err := s.attempts.ListByUser(user.ID)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	seen := make(map[uint]struct{})
	totalSeconds := 0
	for _, a := range attempts {
		seen[a.QuizID] = struct{}{}
		totalSeconds += a.TimeTakenSeconds
	}

	recent := attempts
	if len(recent) > 10 {
		recent = recent[:10]
	}

	// attempts are newest first; the timeline reads oldest to newest.
	timeline := make([]TimelinePoint, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		timeline = append(timeline, TimelinePoint{
			CompletedAt: attempts[i].CompletedAt,
			Score:       attempts[i].Score,
		})
	}

	return &Dashboard{
		TotalQuizzes:     totalQuizzes,
		CompletedQuizzes: len(seen),
		TotalAttempts:    len(attempts),
		TotalMinutes:     totalSeconds / 60,
		AverageScore:     user.AverageScore,
		RecentAttempts:   recent,
		ScoreTimeline:    timeline,
	}, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizapi/internal/domain"
	"quizapi/internal/observability"
)

var ErrAttemptNotFound = errors.New("attempt not found")

type AttemptRepository interface {
	Create(attempt *domain.Attempt) error
	FindByID(id uint) (*domain.Attempt, error)
	// ListByUser returns every attempt of a user, newest first.
	ListByUser(userID uint) ([]domain.Attempt, error)
	// ListRecentByUser returns up to limit attempts, newest first.
	ListRecentByUser(userID uint, limit int) ([]domain.Attempt, error)
}

type GormAttemptRepository struct{ db *gorm.DB }

func NewAttemptRepository(db *gorm.DB) AttemptRepository { return &GormAttemptRepository{db: db} }

func (r *GormAttemptRepository) Create(attempt *domain.Attempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attempt", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "attempt", "create", "success")
	return nil
}

func (r *GormAttemptRepository) FindByID(id uint) (*domain.Attempt, error) {
	var a domain.Attempt
	err := r.db.First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "attempt", "find_by_id", "not_found")
			return nil, ErrAttemptNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "attempt", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attempt", "find_by_id", "success")
	return &a, nil
}

func (r *GormAttemptRepository) ListByUser(userID uint) ([]domain.Attempt, error) {
	return r.listByUser(userID, 0, "list_by_user")
}

func (r *GormAttemptRepository) ListRecentByUser(userID uint, limit int) ([]domain.Attempt, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.listByUser(userID, limit, "list_recent_by_user")
}

func (r *GormAttemptRepository) listByUser(userID uint, limit int, op string) ([]domain.Attempt, error) {
	var attempts []domain.Attempt
	q := r.db.Where("user_id = ?", userID).Order("completed_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&attempts).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "attempt", op, "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "attempt", op, "success")
	return attempts, nil
}

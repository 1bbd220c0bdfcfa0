package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"quizapi/internal/domain"
	"quizapi/internal/observability"
)

var ErrQuizNotFound = errors.New("quiz not found")

type QuizRepository interface {
	FindByID(id uint) (*domain.Quiz, error)
	ListPaged(req PageRequest) (PageResult[domain.Quiz], error)
	Count() (int64, error)
	Create(quiz *domain.Quiz) error
	Update(quiz *domain.Quiz) error
	Delete(id uint) error
}

type GormQuizRepository struct{ db *gorm.DB }

func NewQuizRepository(db *gorm.DB) QuizRepository { return &GormQuizRepository{db: db} }

func (r *GormQuizRepository) FindByID(id uint) (*domain.Quiz, error) {
	var q domain.Quiz
	err := r.db.First(&q, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "quiz", "find_by_id", "not_found")
			return nil, ErrQuizNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "quiz", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "quiz", "find_by_id", "success")
	return &q, nil
}

func (r *GormQuizRepository) ListPaged(req PageRequest) (PageResult[domain.Quiz], error) {
	req = normalizePageRequest(req)
	result := PageResult[domain.Quiz]{Page: req.Page, PageSize: req.PageSize}

	if err := r.db.Model(&domain.Quiz{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "list_paged", "error")
		return PageResult[domain.Quiz]{}, err
	}

	offset := (req.Page - 1) * req.PageSize
	err := r.db.Order("id").Offset(offset).Limit(req.PageSize).Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "list_paged", "error")
		return PageResult[domain.Quiz]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, req.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "quiz", "list_paged", "success")
	return result, nil
}

func (r *GormQuizRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Quiz{}).Count(&n).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "count", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "quiz", "count", "success")
	return n, nil
}

func (r *GormQuizRepository) Create(quiz *domain.Quiz) error {
	err := r.db.Create(quiz).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "quiz", "create", "success")
	return nil
}

func (r *GormQuizRepository) Update(quiz *domain.Quiz) error {
	err := r.db.Save(quiz).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "update", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "quiz", "update", "success")
	return nil
}

func (r *GormQuizRepository) Delete(id uint) error {
	res := r.db.Delete(&domain.Quiz{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "quiz", "delete", "not_found")
		return ErrQuizNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "quiz", "delete", "success")
	return nil
}

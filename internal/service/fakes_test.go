package service

import (
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"

	"quizapi/internal/domain"
	"quizapi/internal/repository"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User

	statsErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*domain.User)}
}

func (r *fakeUserRepo) FindByID(id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateLastLogin(id uint, at time.Time) error {
	return r.mutate(id, func(u *domain.User) { u.LastLoginAt = &at })
}

func (r *fakeUserRepo) UpdatePassword(id uint, hash string) error {
	return r.mutate(id, func(u *domain.User) { u.PasswordHash = hash })
}

func (r *fakeUserRepo) UpdateStats(id uint, total int, average float64, history []domain.AttemptSummary) error {
	if r.statsErr != nil {
		return r.statsErr
	}
	return r.mutate(id, func(u *domain.User) {
		u.TotalAttempts = total
		u.AverageScore = average
		u.AttemptHistory = datatypes.NewJSONType(history)
	})
}

func (r *fakeUserRepo) Deactivate(id uint, at time.Time) error {
	return r.mutate(id, func(u *domain.User) {
		u.IsActive = false
		u.DeactivatedAt = &at
	})
}

func (r *fakeUserRepo) SetActive(id uint, active bool) error {
	return r.mutate(id, func(u *domain.User) {
		u.IsActive = active
		if active {
			u.DeactivatedAt = nil
		}
	})
}

func (r *fakeUserRepo) ListPaged(query repository.UserListQuery) (repository.PageResult[domain.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []domain.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return repository.PageResult[domain.User]{
		Items:      users,
		Page:       1,
		PageSize:   len(users),
		Total:      int64(len(users)),
		TotalPages: 1,
	}, nil
}

func (r *fakeUserRepo) mutate(id uint, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

type fakeQuizRepo struct {
	mu      sync.Mutex
	nextID  uint
	quizzes map[uint]*domain.Quiz
	finds   int
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{nextID: 1, quizzes: make(map[uint]*domain.Quiz)}
}

func (r *fakeQuizRepo) FindByID(id uint) (*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	q, ok := r.quizzes[id]
	if !ok {
		return nil, repository.ErrQuizNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fakeQuizRepo) List() ([]domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var quizzes []domain.Quiz
	for _, q := range r.quizzes {
		quizzes = append(quizzes, *q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (r *fakeQuizRepo) ListPaged(req repository.PageRequest) (repository.PageResult[domain.Quiz], error) {
	quizzes, _ := r.List()
	return repository.PageResult[domain.Quiz]{
		Items:      quizzes,
		Page:       1,
		PageSize:   len(quizzes),
		Total:      int64(len(quizzes)),
		TotalPages: 1,
	}, nil
}

func (r *fakeQuizRepo) Count() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.quizzes)), nil
}

func (r *fakeQuizRepo) Create(quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz.ID = r.nextID
	r.nextID++
	cp := *quiz
	r.quizzes[quiz.ID] = &cp
	return nil
}

func (r *fakeQuizRepo) Update(quiz *domain.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID]; !ok {
		return repository.ErrQuizNotFound
	}
	cp := *quiz
	r.quizzes[quiz.ID] = &cp
	return nil
}

func (r *fakeQuizRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return repository.ErrQuizNotFound
	}
	delete(r.quizzes, id)
	return nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	nextID   uint
	attempts []domain.Attempt

	createErr error
	listErr   error
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{nextID: 1}
}

func (r *fakeAttemptRepo) Create(attempt *domain.Attempt) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = r.nextID
	r.nextID++
	r.attempts = append(r.attempts, *attempt)
	return nil
}

func (r *fakeAttemptRepo) FindByID(id uint) (*domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, repository.ErrAttemptNotFound
}

func (r *fakeAttemptRepo) ListByUser(userID uint) ([]domain.Attempt, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	return out, nil
}

func (r *fakeAttemptRepo) ListRecentByUser(userID uint, limit int) ([]domain.Attempt, error) {
	out, err := r.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"gorm.io/datatypes"

	"quizapi/internal/domain"
	"quizapi/internal/repository"
)

func newQuizServiceForTest(t *testing.T, quizzes *fakeQuizRepo, cache MissCacheStore) *QuizService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewQuizService(quizzes, cache, time.Minute, logger)
}

func validQuestion() domain.Question {
	return domain.Question{
		Text: "What is two plus two?",
		Options: []domain.Option{
			{Text: "three"},
			{Text: "four", IsCorrect: true},
		},
	}
}

func TestQuizServiceGetUsesMissCache(t *testing.T) {
	ctx := context.Background()
	quizzes := newFakeQuizRepo()
	svc := newQuizServiceForTest(t, quizzes, NewInMemoryMissCacheStore())

	if _, err := svc.Get(ctx, 42); !errors.Is(err, repository.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
	findsAfterFirst := quizzes.finds

	if _, err := svc.Get(ctx, 42); !errors.Is(err, repository.ErrQuizNotFound) {
		t.Fatalf("second get: %v", err)
	}
	if quizzes.finds != findsAfterFirst {
		t.Fatal("second lookup of a known miss must not reach the repository")
	}
}

func TestQuizServiceCreateInvalidatesMissCache(t *testing.T) {
	ctx := context.Background()
	quizzes := newFakeQuizRepo()
	cache := NewInMemoryMissCacheStore()
	svc := newQuizServiceForTest(t, quizzes, cache)

	if _, err := svc.Get(ctx, 1); !errors.Is(err, repository.ErrQuizNotFound) {
		t.Fatalf("prime miss: %v", err)
	}

	created, err := svc.Create(ctx, QuizInput{Title: "New"}, []domain.Question{validQuestion()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after create: %v", err)
	}
	if got.Title != "New" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestQuizServiceQuestionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newQuizServiceForTest(t, newFakeQuizRepo(), nil)

	cases := []struct {
		name string
		q    domain.Question
	}{
		{"no text", domain.Question{Options: []domain.Option{{Text: "a", IsCorrect: true}, {Text: "b"}}}},
		{"one option", domain.Question{Text: "q", Options: []domain.Option{{Text: "a", IsCorrect: true}}}},
		{"no correct option", domain.Question{Text: "q", Options: []domain.Option{{Text: "a"}, {Text: "b"}}}},
		{"two correct single-select", domain.Question{Text: "q", Options: []domain.Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}}}},
		{"empty option text", domain.Question{Text: "q", Options: []domain.Option{{Text: "", IsCorrect: true}, {Text: "b"}}}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, QuizInput{Title: "T"}, []domain.Question{tc.q}); !errors.Is(err, ErrInvalidQuestion) {
			t.Errorf("%s: err = %v, want ErrInvalidQuestion", tc.name, err)
		}
	}

	multi := domain.Question{
		Text:  "q",
		Multi: true,
		Options: []domain.Option{
			{Text: "a", IsCorrect: true},
			{Text: "b", IsCorrect: true},
			{Text: "c"},
		},
	}
	if _, err := svc.Create(ctx, QuizInput{Title: "T"}, []domain.Question{multi}); err != nil {
		t.Fatalf("multi-select with two correct options must be valid: %v", err)
	}
}

func TestQuizServiceQuestionIndexOps(t *testing.T) {
	ctx := context.Background()
	quizzes := newFakeQuizRepo()
	svc := newQuizServiceForTest(t, quizzes, nil)

	quiz := &domain.Quiz{
		Title:     "Q",
		Questions: datatypes.NewJSONType([]domain.Question{validQuestion(), validQuestion()}),
	}
	if err := quizzes.Create(quiz); err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated := validQuestion()
	updated.Text = "replaced"
	got, err := svc.UpdateQuestion(ctx, quiz.ID, 1, updated)
	if err != nil {
		t.Fatalf("update question: %v", err)
	}
	if got.Questions.Data()[1].Text != "replaced" {
		t.Fatal("question 1 must be replaced")
	}

	if _, err := svc.UpdateQuestion(ctx, quiz.ID, 2, updated); !errors.Is(err, ErrQuestionIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrQuestionIndexOutOfRange", err)
	}
	if _, err := svc.DeleteQuestion(ctx, quiz.ID, -1); !errors.Is(err, ErrQuestionIndexOutOfRange) {
		t.Fatalf("err = %v, want ErrQuestionIndexOutOfRange", err)
	}

	got, err = svc.DeleteQuestion(ctx, quiz.ID, 0)
	if err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if len(got.Questions.Data()) != 1 {
		t.Fatalf("questions = %d, want 1", len(got.Questions.Data()))
	}
	if got.Questions.Data()[0].Text != "replaced" {
		t.Fatal("remaining question must be the replaced one")
	}

	got, err = svc.AddQuestion(ctx, quiz.ID, validQuestion())
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if len(got.Questions.Data()) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions.Data()))
	}
}

func TestQuizServiceDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc := newQuizServiceForTest(t, newFakeQuizRepo(), nil)
	if err := svc.Delete(ctx, 5); !errors.Is(err, repository.ErrQuizNotFound) {
		t.Fatalf("err = %v, want ErrQuizNotFound", err)
	}
}

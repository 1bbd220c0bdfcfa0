package service

import (
	"testing"

	"quizapi/internal/domain"
)

func question(correct ...int) domain.Question {
	opts := make([]domain.Option, 4)
	for i := range opts {
		opts[i] = domain.Option{Text: "option"}
	}
	for _, c := range correct {
		opts[c].IsCorrect = true
	}
	return domain.Question{Text: "q", Options: opts, Multi: len(correct) > 1}
}

func TestScoreSubmissionAllCorrect(t *testing.T) {
	questions := []domain.Question{question(0), question(1), question(2), question(3)}
	answers := []domain.Answer{
		{QuestionIndex: 0, SelectedOptions: []int{0}},
		{QuestionIndex: 1, SelectedOptions: []int{1}},
		{QuestionIndex: 2, SelectedOptions: []int{2}},
		{QuestionIndex: 3, SelectedOptions: []int{3}},
	}
	score, correct := ScoreSubmission(questions, answers)
	if score != 100.00 || correct != 4 {
		t.Fatalf("score = %v, correct = %d; want 100.00, 4", score, correct)
	}
}

func TestScoreSubmissionHalfCorrect(t *testing.T) {
	questions := []domain.Question{question(0), question(1), question(2), question(3)}
	answers := []domain.Answer{
		{QuestionIndex: 0, SelectedOptions: []int{0}},
		{QuestionIndex: 1, SelectedOptions: []int{0}},
		{QuestionIndex: 2, SelectedOptions: []int{2}},
		{QuestionIndex: 3, SelectedOptions: []int{0}},
	}
	score, correct := ScoreSubmission(questions, answers)
	if score != 50.00 || correct != 2 {
		t.Fatalf("score = %v, correct = %d; want 50.00, 2", score, correct)
	}
}

func TestScoreSubmissionRoundsToTwoDecimals(t *testing.T) {
	questions := []domain.Question{question(0), question(0), question(0)}
	answers := []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{0}}}
	score, correct := ScoreSubmission(questions, answers)
	if score != 33.33 || correct != 1 {
		t.Fatalf("score = %v, correct = %d; want 33.33, 1", score, correct)
	}
}

func TestScoreSubmissionEmptyAnswers(t *testing.T) {
	questions := []domain.Question{question(0), question(1)}
	score, correct := ScoreSubmission(questions, nil)
	if score != 0 || correct != 0 {
		t.Fatalf("score = %v, correct = %d; want 0, 0", score, correct)
	}
}

func TestScoreSubmissionZeroQuestions(t *testing.T) {
	score, correct := ScoreSubmission(nil, []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{0}}})
	if score != 0 || correct != 0 {
		t.Fatalf("score = %v, correct = %d; want 0, 0", score, correct)
	}
}

func TestScoreSubmissionSkipsOutOfRangeQuestionIndex(t *testing.T) {
	questions := []domain.Question{question(0)}
	answers := []domain.Answer{
		{QuestionIndex: 5, SelectedOptions: []int{0}},
		{QuestionIndex: -1, SelectedOptions: []int{0}},
		{QuestionIndex: 0, SelectedOptions: []int{0}},
	}
	score, correct := ScoreSubmission(questions, answers)
	if score != 100.00 || correct != 1 {
		t.Fatalf("score = %v, correct = %d; want 100.00, 1", score, correct)
	}
}

func TestScoreSubmissionOutOfRangeOptionIsIncorrect(t *testing.T) {
	questions := []domain.Question{question(0)}
	answers := []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{0, 99}}}
	score, correct := ScoreSubmission(questions, answers)
	if score != 0 || correct != 0 {
		t.Fatalf("score = %v, correct = %d; want 0, 0", score, correct)
	}
}

func TestScoreSubmissionMultiSelectNeedsExactSet(t *testing.T) {
	questions := []domain.Question{question(0, 2)}

	exact := []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{2, 0}}}
	if score, _ := ScoreSubmission(questions, exact); score != 100.00 {
		t.Fatalf("exact set: score = %v, want 100.00", score)
	}

	subset := []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{0}}}
	if score, _ := ScoreSubmission(questions, subset); score != 0 {
		t.Fatalf("subset: score = %v, want 0", score)
	}

	superset := []domain.Answer{{QuestionIndex: 0, SelectedOptions: []int{0, 1, 2}}}
	if score, _ := ScoreSubmission(questions, superset); score != 0 {
		t.Fatalf("superset: score = %v, want 0", score)
	}
}

func TestScoreSubmissionLastAnswerWinsPerQuestion(t *testing.T) {
	questions := []domain.Question{question(0)}
	answers := []domain.Answer{
		{QuestionIndex: 0, SelectedOptions: []int{0}},
		{QuestionIndex: 0, SelectedOptions: []int{1}},
	}
	score, correct := ScoreSubmission(questions, answers)
	if score != 0 || correct != 0 {
		t.Fatalf("score = %v, correct = %d; want 0, 0", score, correct)
	}
}

func TestScoreSubmissionEmptySelectionIsIncorrect(t *testing.T) {
	questions := []domain.Question{question(0)}
	answers := []domain.Answer{{QuestionIndex: 0, SelectedOptions: nil}}
	score, correct := ScoreSubmission(questions, answers)
	if score != 0 || correct != 0 {
		t.Fatalf("score = %v, correct = %d; want 0, 0", score, correct)
	}
}

package service

import (
	"math"

	"quizapi/internal/domain"
)

// ScoreSubmission grades a set of answers against the quiz questions.
// A question counts as correct when the set of selected option indices
// equals the set of correct option indices exactly. Answers pointing at
// question indices outside the quiz are skipped; when the same question
// is answered more than once, the last answer wins. The score is the
// percentage of correct questions over all quiz questions, rounded to
// two decimals; a quiz with zero questions scores 0.
func ScoreSubmission(questions []domain.Question, answers []domain.Answer) (score float64, correctCount int) {
	if len(questions) == 0 {
		return 0, 0
	}

	latest := make(map[int]domain.Answer, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(questions) {
			continue
		}
		latest[a.QuestionIndex] = a
	}

	for idx, a := range latest {
		if answerMatches(questions[idx], a) {
			correctCount++
		}
	}

	score = round2(float64(correctCount) / float64(len(questions)) * 100)
	return score, correctCount
}

func answerMatches(q domain.Question, a domain.Answer) bool {
	selected := make(map[int]struct{}, len(a.SelectedOptions))
	for _, opt := range a.SelectedOptions {
		if opt < 0 || opt >= len(q.Options) {
			return false
		}
		selected[opt] = struct{}{}
	}

	correct := 0
	for i, opt := range q.Options {
		if !opt.IsCorrect {
			continue
		}
		correct++
		if _, ok := selected[i]; !ok {
			return false
		}
	}
	return correct == len(selected) && correct > 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

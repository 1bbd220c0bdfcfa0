package handler

import (
	"time"

	"quizapi/internal/domain"
)

type userView struct {
	ID            uint       `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	IsActive      bool       `json:"is_active"`
	IsAdmin       bool       `json:"is_admin"`
	RegisteredAt  time.Time  `json:"registered_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	TotalAttempts int        `json:"total_attempts"`
	AverageScore  float64    `json:"average_score"`
}

func newUserView(u *domain.User) userView {
	return userView{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		IsActive:      u.IsActive,
		IsAdmin:       u.IsAdmin,
		RegisteredAt:  u.RegisteredAt,
		LastLoginAt:   u.LastLoginAt,
		TotalAttempts: u.TotalAttempts,
		AverageScore:  u.AverageScore,
	}
}

func newUserViews(users []domain.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

// playerOptionView hides which options are correct.
type playerOptionView struct {
	Text string `json:"text"`
}

type playerQuestionView struct {
	Text    string             `json:"text"`
	Options []playerOptionView `json:"options"`
	Multi   bool               `json:"multi"`
}

type quizSummaryView struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Difficulty       string    `json:"difficulty"`
	TimeLimitSeconds int       `json:"time_limit_seconds"`
	QuestionCount    int       `json:"question_count"`
	CreatedAt        time.Time `json:"created_at"`
}

type quizPlayerView struct {
	quizSummaryView
	Questions []playerQuestionView `json:"questions"`
}

type quizAdminView struct {
	quizSummaryView
	Questions []domain.Question `json:"questions"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func newQuizSummaryView(q *domain.Quiz) quizSummaryView {
	return quizSummaryView{
		ID:               q.ID,
		Title:            q.Title,
		Description:      q.Description,
		Difficulty:       q.Difficulty,
		TimeLimitSeconds: q.TimeLimitSeconds,
		QuestionCount:    len(q.Questions.Data()),
		CreatedAt:        q.CreatedAt,
	}
}

func newQuizPlayerView(q *domain.Quiz) quizPlayerView {
	questions := q.Questions.Data()
	views := make([]playerQuestionView, 0, len(questions))
	for _, question := range questions {
		opts := make([]playerOptionView, 0, len(question.Options))
		for _, o := range question.Options {
			opts = append(opts, playerOptionView{Text: o.Text})
		}
		views = append(views, playerQuestionView{Text: question.Text, Options: opts, Multi: question.Multi})
	}
	return quizPlayerView{quizSummaryView: newQuizSummaryView(q), Questions: views}
}

func newQuizAdminView(q *domain.Quiz) quizAdminView {
	questions := q.Questions.Data()
	if questions == nil {
		questions = []domain.Question{}
	}
	return quizAdminView{
		quizSummaryView: newQuizSummaryView(q),
		Questions:       questions,
		UpdatedAt:       q.UpdatedAt,
	}
}

type attemptView struct {
	ID               uint            `json:"id"`
	QuizID           uint            `json:"quiz_id"`
	Answers          []domain.Answer `json:"answers"`
	Score            float64         `json:"score"`
	CorrectCount     int             `json:"correct_count"`
	CompletedAt      time.Time       `json:"completed_at"`
	TimeTakenSeconds int             `json:"time_taken_seconds"`
}

func newAttemptView(a *domain.Attempt) attemptView {
	return attemptView{
		ID:               a.ID,
		QuizID:           a.QuizID,
		Answers:          a.Answers.Data(),
		Score:            a.Score,
		CorrectCount:     a.CorrectCount,
		CompletedAt:      a.CompletedAt,
		TimeTakenSeconds: a.TimeTakenSeconds,
	}
}

func newAttemptViews(attempts []domain.Attempt) []attemptView {
	views := make([]attemptView, 0, len(attempts))
	for i := range attempts {
		views = append(views, newAttemptView(&attempts[i]))
	}
	return views
}

package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Answer is one submitted response: the index of the question within
// the quiz and the set of selected option indices.
type Answer struct {
	QuestionIndex   int   `json:"question_index"`
	SelectedOptions []int `json:"selected_options"`
}

// Attempt is immutable once created.
type Attempt struct {
	ID               uint                         `gorm:"primaryKey" json:"id"`
	UserID           uint                         `gorm:"index;not null" json:"user_id"`
	QuizID           uint                         `gorm:"index;not null" json:"quiz_id"`
	Answers          datatypes.JSONType[[]Answer] `json:"answers"`
	Score            float64                      `gorm:"not null" json:"score"`
	CorrectCount     int                          `gorm:"not null" json:"correct_count"`
	CompletedAt      time.Time                    `gorm:"index;not null" json:"completed_at"`
	TimeTakenSeconds int                          `json:"time_taken_seconds,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
}

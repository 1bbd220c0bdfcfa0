package domain

import (
	"time"

	"gorm.io/datatypes"
)

// AttemptSummary is the lightweight per-attempt record embedded in the
// user row so profile views render without joining the attempts table.
type AttemptSummary struct {
	AttemptID        uint      `json:"attempt_id"`
	QuizID           uint      `json:"quiz_id"`
	QuizTitle        string    `json:"quiz_title"`
	Score            float64   `json:"score"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeTakenSeconds int       `json:"time_taken_seconds,omitempty"`
}

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Email         string     `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Name          string     `gorm:"size:256" json:"name"`
	PasswordHash  string     `gorm:"size:128;not null" json:"-"`
	// No default tag: gorm would skip a zero value on insert and the
	// column default would silently flip created-inactive users back
	// to active. Register sets the field explicitly.
	IsActive      bool       `gorm:"not null;index" json:"is_active"`
	IsAdmin       bool       `gorm:"not null;default:false" json:"is_admin"`
	RegisteredAt  time.Time  `gorm:"index;not null" json:"registered_at"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	DeactivatedAt *time.Time `json:"-"`

	// Running aggregates, recomputed from the full attempt history on
	// every submission.
	TotalAttempts  int                                  `gorm:"not null;default:0" json:"total_attempts"`
	AverageScore   float64                              `gorm:"not null;default:0" json:"average_score"`
	AttemptHistory datatypes.JSONType[[]AttemptSummary] `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question options are index-addressed: submissions reference a
// question by its position in the quiz and options by their positions
// in the question. Multi marks multi-select questions, which may have
// more than one correct option; single-answer questions have exactly
// one.
type Question struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
	Multi   bool     `json:"multi,omitempty"`
}

type Quiz struct {
	ID               uint                           `gorm:"primaryKey" json:"id"`
	Title            string                         `gorm:"size:256;not null" json:"title"`
	Description      string                         `gorm:"size:2048" json:"description"`
	Difficulty       string                         `gorm:"size:32;index" json:"difficulty"`
	TimeLimitSeconds int                            `json:"time_limit_seconds,omitempty"`
	Questions        datatypes.JSONType[[]Question] `json:"questions"`
	CreatedAt        time.Time                      `json:"created_at"`
	UpdatedAt        time.Time                      `json:"updated_at"`
}

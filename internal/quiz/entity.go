package quiz

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/category"
)

type Quiz struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	Title           string     `gorm:"type:text;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	Status          QuizStatus `gorm:"type:varchar(16);not null;default:'DRAFT'" json:"status"`
	Difficulty      Difficulty `gorm:"type:varchar(16);not null;default:'MEDIUM'" json:"difficulty"`
	DurationMinutes int        `gorm:"not null;default:0" json:"duration_minutes"`
	TakesCount      int        `gorm:"not null;default:0" json:"takes_count"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Category  *category.Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Questions []Question         `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Text     string       `gorm:"type:text;not null" json:"text"`
	Type     QuestionType `gorm:"type:varchar(32);not null" json:"type"`
	Points   int          `gorm:"not null;default:1" json:"points"`
	Position int          `gorm:"not null;default:0" json:"position"`

	Options []Option `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

type Option struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	Position   int       `gorm:"not null;default:0" json:"position"`
}

// CorrectOption returns the option flagged correct, or nil when authoring
// left the question without one.
func (q *Question) CorrectOption() *Option {
	for i := range q.Options {
		if q.Options[i].IsCorrect {
			return &q.Options[i]
		}
	}
	return nil
}

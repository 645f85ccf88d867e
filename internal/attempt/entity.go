package attempt

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/quiz"
)

type AttemptStatus string

const (
	StatusInProgress AttemptStatus = "IN_PROGRESS"
	StatusCompleted  AttemptStatus = "COMPLETED"
)

type QuizAttempt struct {
	ID     uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID     `gorm:"type:uuid;not null;index:idx_attempts_user_quiz" json:"user_id"`
	QuizID uuid.UUID     `gorm:"type:uuid;not null;index:idx_attempts_user_quiz" json:"quiz_id"`
	Status AttemptStatus `gorm:"type:varchar(16);not null;default:'IN_PROGRESS'" json:"status"`

	// Percentage in [0, 100]. Zero until the attempt is finalized.
	Score       float64    `gorm:"not null;default:0" json:"score"`
	StartedAt   time.Time  `gorm:"autoCreateTime" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Quiz    *quiz.Quiz   `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	Answers []UserAnswer `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

// UserAnswer holds one answer per (attempt, question); the unique index is
// what makes answer saving an upsert target.
type UserAnswer struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AttemptID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_answers_attempt_question" json:"attempt_id"`
	QuestionID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_answers_attempt_question" json:"question_id"`
	SelectedOptionID *uuid.UUID `gorm:"type:uuid" json:"selected_option_id,omitempty"`
	ShortAnswer      *string    `gorm:"type:text" json:"short_answer,omitempty"`
	IsCorrect        bool       `gorm:"not null;default:false" json:"is_correct"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

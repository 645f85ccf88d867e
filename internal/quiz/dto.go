package quiz

import (
	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/category"
)

type QuizWithQuestionsDTO struct {
	Quiz      *Quiz       `json:"quiz"`
	Questions []*Question `json:"questions"`
}

type UpdateQuizDTO struct {
	Title           *string     `json:"title"`
	Description     *string     `json:"description"`
	Difficulty      *Difficulty `json:"difficulty"`
	DurationMinutes *int        `json:"duration_minutes"`
	CategoryID      *uuid.UUID  `json:"category_id"`
}

type CatalogFilter struct {
	CategoryID *uuid.UUID
	Difficulty *Difficulty
	Limit      int
	Offset     int
}

// Take view: what a quiz taker is allowed to see. Options never carry the
// correctness flag here.
type QuizTakeView struct {
	ID              uuid.UUID          `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Difficulty      Difficulty         `json:"difficulty"`
	DurationMinutes int                `json:"duration_minutes"`
	Category        *category.Category `json:"category,omitempty"`
	Questions       []QuestionTakeView `json:"questions"`
}

type QuestionTakeView struct {
	ID       uuid.UUID        `json:"id"`
	Text     string           `json:"text"`
	Type     QuestionType     `json:"type"`
	Points   int              `json:"points"`
	Position int              `json:"position"`
	Options  []OptionTakeView `json:"options"`
}

type OptionTakeView struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	Position int       `json:"position"`
}

func NewTakeView(q *Quiz) *QuizTakeView {
	view := &QuizTakeView{
		ID:              q.ID,
		Title:           q.Title,
		Description:     q.Description,
		Difficulty:      q.Difficulty,
		DurationMinutes: q.DurationMinutes,
		Category:        q.Category,
		Questions:       make([]QuestionTakeView, 0, len(q.Questions)),
	}

	for _, question := range q.Questions {
		qv := QuestionTakeView{
			ID:       question.ID,
			Text:     question.Text,
			Type:     question.Type,
			Points:   question.Points,
			Position: question.Position,
			Options:  make([]OptionTakeView, 0, len(question.Options)),
		}
		// Short-answer options hold the canonical answer; they must not be
		// shipped to takers at all.
		if question.Type != TypeShortAnswer {
			for _, opt := range question.Options {
				qv.Options = append(qv.Options, OptionTakeView{
					ID:       opt.ID,
					Text:     opt.Text,
					Position: opt.Position,
				})
			}
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

package attempt

import (
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/quiz"
)

// gradeQuestion decides correctness from the stored option data only; the
// answer value carries what the user picked, never whether it was right.
// A missing answer is simply never equal to anything.
func gradeQuestion(q *quiz.Question, answer string) bool {
	correct := q.CorrectOption()
	if correct == nil {
		return false
	}

	switch q.Type {
	case quiz.TypeMultipleChoice, quiz.TypeTrueFalse:
		// Compare parsed ids so any textual form uuid.Parse accepts is
		// graded the same way answer saving resolved it.
		selected, err := uuid.Parse(answer)
		if err != nil {
			return false
		}
		return selected == correct.ID
	case quiz.TypeShortAnswer:
		if strings.TrimSpace(answer) == "" {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(correct.Text))
	default:
		return false
	}
}

type gradedQuestion struct {
	question *quiz.Question
	answer   string
	correct  bool
}

func gradeAll(questions []quiz.Question, answers map[uuid.UUID]string) ([]gradedQuestion, float64) {
	graded := make([]gradedQuestion, 0, len(questions))
	earned, total := 0, 0

	for i := range questions {
		q := &questions[i]
		answer := answers[q.ID]
		ok := gradeQuestion(q, answer)

		total += q.Points
		if ok {
			earned += q.Points
		}
		graded = append(graded, gradedQuestion{question: q, answer: answer, correct: ok})
	}

	return graded, computeScore(earned, total)
}

func computeScore(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(earned) / float64(total) * 100
}

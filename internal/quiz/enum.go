package quiz

type QuizStatus string

const (
	StatusDraft     QuizStatus = "DRAFT"
	StatusPublished QuizStatus = "PUBLISHED"
)

var AllStatuses = []QuizStatus{StatusDraft, StatusPublished}

func (s QuizStatus) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

var AllDifficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) IsValid() bool {
	for _, v := range AllDifficulties {
		if d == v {
			return true
		}
	}
	return false
}

type QuestionType string

const (
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TypeTrueFalse      QuestionType = "TRUE_FALSE"
	TypeShortAnswer    QuestionType = "SHORT_ANSWER"
)

var AllQuestionTypes = []QuestionType{TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer}

func (t QuestionType) IsValid() bool {
	for _, v := range AllQuestionTypes {
		if t == v {
			return true
		}
	}
	return false
}

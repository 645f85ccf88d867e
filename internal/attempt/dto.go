package attempt

import "github.com/google/uuid"

type SaveAnswerDTO struct {
	QuestionID  uuid.UUID `json:"question_id"`
	AnswerValue string    `json:"answer_value"`
}

type SubmitAttemptDTO struct {
	Answers map[uuid.UUID]string `json:"answers"`
}

type StartAttemptResponse struct {
	AttemptID uuid.UUID     `json:"attempt_id"`
	Status    AttemptStatus `json:"status"`
	Resumed   bool          `json:"resumed"`
}

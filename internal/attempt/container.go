package attempt

import (
	"github.com/saulo-duarte/quizdeck/internal/quiz"
	"gorm.io/gorm"
)

type AttemptContainer struct {
	Repo    AttemptRepository
	Service AttemptService
	Handler *Handler
}

func NewAttemptContainer(db *gorm.DB, quizRepo quiz.QuizRepository) *AttemptContainer {
	repo := NewRepository(db)
	service := NewService(db, repo, quizRepo)
	handler := NewHandler(service)

	return &AttemptContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

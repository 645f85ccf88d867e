package quiz

import "gorm.io/gorm"

type QuizContainer struct {
	Repo    QuizRepository
	Service QuizService
	Handler *Handler
}

func NewQuizContainer(db *gorm.DB, cache TakeViewCache) *QuizContainer {
	repo := NewRepository(db)
	service := NewService(db, repo, cache)
	handler := NewHandler(service)

	return &QuizContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

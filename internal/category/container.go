package category

import "gorm.io/gorm"

type CategoryContainer struct {
	Repo    Repository
	Service Service
	Handler *Handler
}

func NewCategoryContainer(db *gorm.DB) *CategoryContainer {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service)

	return &CategoryContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}

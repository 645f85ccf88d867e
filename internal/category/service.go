package category

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/config"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameTaken        = errors.New("category name already exists")
	ErrInvalidInput     = errors.New("invalid input")
)

type Service interface {
	Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, dto CreateCategoryDTO) (*Category, error) {
	log := config.WithContext(ctx)

	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return nil, ErrInvalidInput
	}

	c := &Category{
		ID:          uuid.New(),
		Name:        name,
		Description: dto.Description,
	}

	if err := s.repo.Create(c); err != nil {
		if !errors.Is(err, ErrNameTaken) {
			log.WithError(err).Error("Failed to create category")
		}
		return nil, err
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]Category, error) {
	return s.repo.FindAll()
}

func (s *service) Update(ctx context.Context, id uuid.UUID, dto UpdateCategoryDTO) (*Category, error) {
	c, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		c.Name = name
	}
	if dto.Description != nil {
		c.Description = *dto.Description
	}

	if err := s.repo.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/config"
	"gorm.io/gorm"
)

var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidQuiz      = errors.New("invalid quiz")
	ErrInvalidQuestion  = errors.New("invalid question")
)

type QuizService interface {
	CreateQuizWithQuestions(ctx context.Context, quiz *Quiz, questions []*Question) error
	GetQuizWithQuestions(ctx context.Context, quizID uuid.UUID) (*QuizWithQuestionsDTO, error)
	GetTakeView(ctx context.Context, quizID uuid.UUID) (*QuizTakeView, error)
	ListPublished(ctx context.Context, filter CatalogFilter) ([]*Quiz, error)
	ListMine(ctx context.Context) ([]*Quiz, error)
	ListAll(ctx context.Context) ([]*Quiz, error)
	UpdateQuiz(ctx context.Context, quizID uuid.UUID, dto UpdateQuizDTO) (*Quiz, error)
	PublishQuiz(ctx context.Context, quizID uuid.UUID) (*Quiz, error)
	DeleteQuiz(ctx context.Context, quizID uuid.UUID) error
	AddQuestionToQuiz(ctx context.Context, quizID uuid.UUID, question *Question) error
	RemoveQuestion(ctx context.Context, questionID uuid.UUID) error
}

type quizService struct {
	repo  QuizRepository
	cache TakeViewCache
	db    *gorm.DB
}

func NewService(db *gorm.DB, repo QuizRepository, cache TakeViewCache) QuizService {
	return &quizService{
		repo:  repo,
		cache: cache,
		db:    db,
	}
}

// ValidateQuestion enforces the authoring invariants: a positive point value,
// a valid type, and exactly one correct option (for SHORT_ANSWER, exactly one
// option holding the canonical answer).
func ValidateQuestion(q *Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: text required", ErrInvalidQuestion)
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}
	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidQuestion)
	}

	correct := 0
	for _, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("%w: option text required", ErrInvalidQuestion)
		}
		if opt.IsCorrect {
			correct++
		}
	}

	switch q.Type {
	case TypeMultipleChoice:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: multiple choice needs at least two options", ErrInvalidQuestion)
		}
		if correct != 1 {
			return fmt.Errorf("%w: multiple choice needs exactly one correct option", ErrInvalidQuestion)
		}
	case TypeTrueFalse:
		if len(q.Options) != 2 || correct != 1 {
			return fmt.Errorf("%w: true/false needs two options with exactly one correct", ErrInvalidQuestion)
		}
	case TypeShortAnswer:
		if len(q.Options) != 1 || correct != 1 {
			return fmt.Errorf("%w: short answer needs exactly one canonical answer option", ErrInvalidQuestion)
		}
	}
	return nil
}

func (s *quizService) CreateQuizWithQuestions(ctx context.Context, quiz *Quiz, questions []*Question) error {
	log := config.WithContext(ctx)

	if strings.TrimSpace(quiz.Title) == "" {
		return fmt.Errorf("%w: title required", ErrInvalidQuiz)
	}
	if quiz.Difficulty == "" {
		quiz.Difficulty = DifficultyMedium
	}
	if !quiz.Difficulty.IsValid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuiz, quiz.Difficulty)
	}
	quiz.Status = StatusDraft
	quiz.TakesCount = 0

	for i, q := range questions {
		if q.Position == 0 {
			q.Position = i + 1
		}
		if err := ValidateQuestion(q); err != nil {
			return err
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			log.WithError(err).Error("Failed to create quiz")
			return err
		}

		for i := range questions {
			questions[i].QuizID = quiz.ID
		}

		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				log.WithError(err).Error("Failed to create quiz questions")
				return err
			}
		}

		log.WithField("quiz_id", quiz.ID.String()).Info("Quiz created")
		return nil
	})
}

func (s *quizService) GetQuizWithQuestions(ctx context.Context, quizID uuid.UUID) (*QuizWithQuestionsDTO, error) {
	quiz, err := s.loadManaged(ctx, quizID)
	if err != nil {
		return nil, err
	}

	questions := make([]*Question, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		questions = append(questions, &quiz.Questions[i])
	}

	return &QuizWithQuestionsDTO{
		Quiz:      quiz,
		Questions: questions,
	}, nil
}

func (s *quizService) GetTakeView(ctx context.Context, quizID uuid.UUID) (*QuizTakeView, error) {
	log := config.WithContext(ctx)

	if view, err := s.cache.Get(ctx, quizID); err != nil {
		log.WithError(err).Warn("Take-view cache read failed")
	} else if view != nil {
		return view, nil
	}

	quiz, err := s.repo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	if quiz.Status != StatusPublished {
		claims, cerr := auth.GetUserClaimsFromContext(ctx)
		if cerr != nil || !canPreviewDraft(claims, quiz) {
			// Draft existence is not revealed to non-owners.
			return nil, ErrQuizNotFound
		}
		// Draft previews are never cached.
		return NewTakeView(quiz), nil
	}

	view := NewTakeView(quiz)
	if err := s.cache.Set(ctx, view); err != nil {
		log.WithError(err).Warn("Take-view cache write failed")
	}
	return view, nil
}

func (s *quizService) ListPublished(ctx context.Context, filter CatalogFilter) ([]*Quiz, error) {
	return s.repo.ListPublished(filter)
}

func (s *quizService) ListMine(ctx context.Context) ([]*Quiz, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.SubjectID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(userID)
}

func (s *quizService) ListAll(ctx context.Context) ([]*Quiz, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !auth.Can(claims.Role, auth.PermQuizManageAny) {
		return nil, ErrUnauthorized
	}
	return s.repo.ListAll()
}

func (s *quizService) UpdateQuiz(ctx context.Context, quizID uuid.UUID, dto UpdateQuizDTO) (*Quiz, error) {
	log := config.WithContext(ctx)

	quiz, err := s.loadManaged(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return nil, fmt.Errorf("%w: title required", ErrInvalidQuiz)
		}
		quiz.Title = *dto.Title
	}
	if dto.Description != nil {
		quiz.Description = *dto.Description
	}
	if dto.Difficulty != nil {
		if !dto.Difficulty.IsValid() {
			return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidQuiz, *dto.Difficulty)
		}
		quiz.Difficulty = *dto.Difficulty
	}
	if dto.DurationMinutes != nil {
		quiz.DurationMinutes = *dto.DurationMinutes
	}
	if dto.CategoryID != nil {
		quiz.CategoryID = *dto.CategoryID
	}

	if err := s.repo.Save(quiz); err != nil {
		log.WithError(err).Error("Failed to update quiz")
		return nil, err
	}

	s.invalidate(ctx, quizID)
	return quiz, nil
}

func (s *quizService) PublishQuiz(ctx context.Context, quizID uuid.UUID) (*Quiz, error) {
	log := config.WithContext(ctx)

	quiz, err := s.loadManaged(ctx, quizID)
	if err != nil {
		return nil, err
	}

	for i := range quiz.Questions {
		if err := ValidateQuestion(&quiz.Questions[i]); err != nil {
			return nil, err
		}
	}

	quiz.Status = StatusPublished
	if err := s.repo.Save(quiz); err != nil {
		log.WithError(err).Error("Failed to publish quiz")
		return nil, err
	}

	s.invalidate(ctx, quizID)
	log.WithField("quiz_id", quizID.String()).Info("Quiz published")
	return quiz, nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, quizID uuid.UUID) error {
	log := config.WithContext(ctx)

	if _, err := s.loadManaged(ctx, quizID); err != nil {
		return err
	}

	if err := s.repo.Delete(quizID); err != nil {
		log.WithError(err).Error("Failed to delete quiz")
		return err
	}

	s.invalidate(ctx, quizID)
	return nil
}

func (s *quizService) AddQuestionToQuiz(ctx context.Context, quizID uuid.UUID, question *Question) error {
	log := config.WithContext(ctx)

	quiz, err := s.loadManaged(ctx, quizID)
	if err != nil {
		return err
	}

	if question.Position == 0 {
		question.Position = len(quiz.Questions) + 1
	}
	if err := ValidateQuestion(question); err != nil {
		return err
	}

	question.QuizID = quiz.ID
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}

	if err := s.repo.AddQuestions([]*Question{question}); err != nil {
		log.WithError(err).Error("Failed to add question")
		return err
	}

	s.invalidate(ctx, quizID)
	return nil
}

func (s *quizService) RemoveQuestion(ctx context.Context, questionID uuid.UUID) error {
	log := config.WithContext(ctx)

	question, err := s.repo.GetQuestion(questionID)
	if err != nil {
		return err
	}

	// Ownership is checked through the owning quiz.
	if _, err := s.loadManaged(ctx, question.QuizID); err != nil {
		return err
	}

	if err := s.repo.DeleteQuestion(questionID); err != nil {
		log.WithError(err).Error("Failed to remove question")
		return err
	}

	s.invalidate(ctx, question.QuizID)
	return nil
}

// loadManaged loads a quiz and applies the ownership fallback: admins manage
// any quiz, everyone else only their own. Non-owners get not-found, not
// forbidden, so quiz existence does not leak.
func (s *quizService) loadManaged(ctx context.Context, quizID uuid.UUID) (*Quiz, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	quiz, err := s.repo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	isOwner := quiz.UserID.String() == claims.UserID
	if !auth.CanManageResource(claims.Role, auth.PermQuizManageAny, auth.PermQuizManageOwn, isOwner) {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func canPreviewDraft(claims *auth.UserClaims, quiz *Quiz) bool {
	if auth.Can(claims.Role, auth.PermQuizPreview) {
		return true
	}
	return quiz.UserID.String() == claims.UserID
}

func (s *quizService) invalidate(ctx context.Context, quizID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		config.WithContext(ctx).WithError(err).Warn("Take-view cache invalidation failed")
	}
}

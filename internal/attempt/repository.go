package attempt

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository interface {
	Create(a *QuizAttempt) error
	FindInProgress(userID, quizID uuid.UUID) (*QuizAttempt, error)
	FindOwned(id, userID uuid.UUID) (*QuizAttempt, error)
	FindOwnedWithResults(id, userID uuid.UUID) (*QuizAttempt, error)
	ListByUser(userID uuid.UUID) ([]*QuizAttempt, error)
	UpsertAnswer(a *UserAnswer) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(a *QuizAttempt) error {
	return r.db.Create(a).Error
}

// FindInProgress returns (nil, nil) when the user has no open attempt on the
// quiz: not having one is the normal start-path, not an error.
func (r *attemptRepository) FindInProgress(userID, quizID uuid.UUID) (*QuizAttempt, error) {
	var a QuizAttempt
	err := r.db.
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, StatusInProgress).
		Order("started_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepository) FindOwned(id, userID uuid.UUID) (*QuizAttempt, error) {
	var a QuizAttempt
	err := r.db.First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepository) FindOwnedWithResults(id, userID uuid.UUID) (*QuizAttempt, error) {
	var a QuizAttempt
	err := r.db.
		Preload("Quiz.Category").
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Quiz.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Answers").
		First(&a, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attemptRepository) ListByUser(userID uuid.UUID) ([]*QuizAttempt, error) {
	var attempts []*QuizAttempt
	if err := r.db.
		Preload("Quiz").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) UpsertAnswer(a *UserAnswer) error {
	return upsertAnswer(r.db, a)
}

// upsertAnswer targets the (attempt_id, question_id) unique index so that
// saving an answer twice replaces the stored value instead of duplicating it.
func upsertAnswer(db *gorm.DB, a *UserAnswer) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"selected_option_id", "short_answer", "is_correct", "updated_at",
		}),
	}).Create(a).Error
}

package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/config"
	"github.com/saulo-duarte/quizdeck/internal/quiz"
	"gorm.io/gorm"
)

var (
	// ErrAttemptNotFound covers missing, not-owned and already-completed
	// attempts alike, so callers cannot probe for other users' attempts.
	ErrAttemptNotFound  = errors.New("attempt not found or already completed")
	ErrQuizNotFound     = quiz.ErrQuizNotFound
	ErrQuestionNotFound = errors.New("question not found in this quiz")
	ErrInvalidAnswer    = errors.New("invalid answer value")
	ErrUnauthorized     = errors.New("unauthorized")
)

type AttemptService interface {
	Start(ctx context.Context, quizID uuid.UUID) (*StartAttemptResponse, error)
	SaveAnswer(ctx context.Context, attemptID uuid.UUID, dto SaveAnswerDTO) error
	Submit(ctx context.Context, attemptID uuid.UUID, answers map[uuid.UUID]string) (*QuizAttempt, error)
	Get(ctx context.Context, attemptID uuid.UUID) (*QuizAttempt, error)
	ListMine(ctx context.Context) ([]*QuizAttempt, error)
}

type attemptService struct {
	repo     AttemptRepository
	quizRepo quiz.QuizRepository
	db       *gorm.DB
}

func NewService(db *gorm.DB, repo AttemptRepository, quizRepo quiz.QuizRepository) AttemptService {
	return &attemptService{
		repo:     repo,
		quizRepo: quizRepo,
		db:       db,
	}
}

func (s *attemptService) Start(ctx context.Context, quizID uuid.UUID) (*StartAttemptResponse, error) {
	log := config.WithContext(ctx)

	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.SubjectID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	qz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	if qz.Status != quiz.StatusPublished {
		// Draft attempts are a preview capability, not the default.
		isOwner := qz.UserID == userID
		if !isOwner && !auth.Can(claims.Role, auth.PermQuizPreview) {
			return nil, ErrQuizNotFound
		}
	}

	// Idempotent resume: at most one open attempt per (user, quiz).
	if existing, err := s.repo.FindInProgress(userID, quizID); err != nil {
		log.WithError(err).Error("Failed to look up open attempt")
		return nil, err
	} else if existing != nil {
		return &StartAttemptResponse{
			AttemptID: existing.ID,
			Status:    existing.Status,
			Resumed:   true,
		}, nil
	}

	a := &QuizAttempt{
		ID:     uuid.New(),
		UserID: userID,
		QuizID: quizID,
		Status: StatusInProgress,
		Score:  0,
	}
	if err := s.repo.Create(a); err != nil {
		log.WithError(err).Error("Failed to create attempt")
		return nil, err
	}

	log.WithField("attempt_id", a.ID.String()).Info("Attempt started")
	return &StartAttemptResponse{AttemptID: a.ID, Status: a.Status}, nil
}

func (s *attemptService) SaveAnswer(ctx context.Context, attemptID uuid.UUID, dto SaveAnswerDTO) error {
	log := config.WithContext(ctx)

	a, err := s.loadOpenAttempt(ctx, attemptID)
	if err != nil {
		return err
	}

	question, err := s.quizRepo.GetQuestion(dto.QuestionID)
	if err != nil {
		if errors.Is(err, quiz.ErrQuestionNotFound) {
			return ErrQuestionNotFound
		}
		return err
	}
	if question.QuizID != a.QuizID {
		return ErrQuestionNotFound
	}

	answer, err := buildAnswer(a.ID, question, dto.AnswerValue, false)
	if err != nil {
		return err
	}
	// Provisional: correctness is only decided at submission.
	answer.IsCorrect = false

	if err := s.repo.UpsertAnswer(answer); err != nil {
		log.WithError(err).Error("Failed to save answer")
		return err
	}
	return nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID uuid.UUID, answers map[uuid.UUID]string) (*QuizAttempt, error) {
	log := config.WithContext(ctx)

	a, err := s.loadOpenAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	// Authoritative reload: correctness comes from stored options, never
	// from the request.
	qz, err := s.quizRepo.GetByID(a.QuizID)
	if err != nil {
		return nil, err
	}

	graded, score := gradeAll(qz.Questions, answers)
	now := time.Now()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, g := range graded {
			answer, err := buildAnswer(a.ID, g.question, g.answer, true)
			if err != nil {
				return err
			}
			answer.IsCorrect = g.correct
			if err := upsertAnswer(tx, answer); err != nil {
				return err
			}
		}

		// Conditional finalize: the status guard in the WHERE clause is what
		// makes a concurrent double submit lose instead of committing twice.
		res := tx.Model(&QuizAttempt{}).
			Where("id = ? AND status = ?", a.ID, StatusInProgress).
			Updates(map[string]interface{}{
				"status":       StatusCompleted,
				"score":        score,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAttemptNotFound
		}

		return tx.Model(&quiz.Quiz{}).
			Where("id = ?", a.QuizID).
			UpdateColumn("takes_count", gorm.Expr("takes_count + 1")).Error
	})
	if err != nil {
		if !errors.Is(err, ErrAttemptNotFound) {
			log.WithError(err).Error("Attempt submission transaction failed")
		}
		return nil, err
	}

	log.WithField("attempt_id", a.ID.String()).WithField("score", score).Info("Attempt completed")

	return s.repo.FindOwnedWithResults(a.ID, a.UserID)
}

func (s *attemptService) Get(ctx context.Context, attemptID uuid.UUID) (*QuizAttempt, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}
	userID, err := claims.SubjectID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	return s.repo.FindOwnedWithResults(attemptID, userID)
}

func (s *attemptService) ListMine(ctx context.Context) ([]*QuizAttempt, error) {
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

// loadOpenAttempt resolves the caller's attempt and enforces the IN_PROGRESS
// precondition shared by answer saving and submission.
func (s *attemptService) loadOpenAttempt(ctx context.Context, attemptID uuid.UUID) (*QuizAttempt, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		return nil, ErrUnauthorized
	}

	userID, err := claims.SubjectID()
	if err != nil {
		return nil, ErrUnauthorized
	}

	a, err := s.repo.FindOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInProgress {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

// buildAnswer maps a raw answer value onto the right column for the question
// type. In strict mode (answer saving) an unknown option id is rejected; at
// submission anything that does not resolve simply stores as unanswered.
func buildAnswer(attemptID uuid.UUID, q *quiz.Question, value string, lenient bool) (*UserAnswer, error) {
	a := &UserAnswer{
		ID:         uuid.New(),
		AttemptID:  attemptID,
		QuestionID: q.ID,
	}

	switch q.Type {
	case quiz.TypeShortAnswer:
		if value != "" {
			v := value
			a.ShortAnswer = &v
		}
	default:
		optionID, err := uuid.Parse(value)
		if err == nil {
			for _, opt := range q.Options {
				if opt.ID == optionID {
					id := optionID
					a.SelectedOptionID = &id
					break
				}
			}
		}
		if a.SelectedOptionID == nil && !lenient {
			if value == "" {
				// Clearing a previously saved choice is allowed.
				return a, nil
			}
			return nil, ErrInvalidAnswer
		}
	}
	return a, nil
}

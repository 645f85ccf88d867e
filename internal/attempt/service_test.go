package attempt_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/quizdeck/internal/attempt"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/category"
	"github.com/saulo-duarte/quizdeck/internal/quiz"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&category.Category{},
		&quiz.Quiz{},
		&quiz.Question{},
		&quiz.Option{},
		&attempt.QuizAttempt{},
		&attempt.UserAnswer{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func userContext(userID uuid.UUID, role string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.UserClaims{
		UserID: userID.String(),
		Role:   role,
	})
}

type fixture struct {
	db      *gorm.DB
	service attempt.AttemptService
	ownerID uuid.UUID
	quiz    *quiz.Quiz
}

// seedQuiz creates a published quiz with two multiple-choice questions worth
// 5 points each and one 5-point short-answer question ("Paris").
func seedQuiz(t *testing.T, db *gorm.DB, status quiz.QuizStatus) (*fixture, []quiz.Question) {
	t.Helper()

	cat := category.Category{ID: uuid.New(), Name: "Geography " + uuid.NewString()}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	ownerID := uuid.New()
	qz := &quiz.Quiz{
		ID:         uuid.New(),
		UserID:     ownerID,
		CategoryID: cat.ID,
		Title:      "Capitals",
		Status:     status,
		Difficulty: quiz.DifficultyEasy,
	}
	if err := db.Create(qz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}

	questions := make([]quiz.Question, 0, 3)
	for i := 0; i < 2; i++ {
		q := quiz.Question{
			ID:       uuid.New(),
			QuizID:   qz.ID,
			Text:     fmt.Sprintf("choice question %d", i+1),
			Type:     quiz.TypeMultipleChoice,
			Points:   5,
			Position: i + 1,
		}
		for j := 0; j < 3; j++ {
			q.Options = append(q.Options, quiz.Option{
				ID:         uuid.New(),
				QuestionID: q.ID,
				Text:       fmt.Sprintf("option %d", j+1),
				IsCorrect:  j == 0,
				Position:   j + 1,
			})
		}
		questions = append(questions, q)
	}

	sa := quiz.Question{
		ID:       uuid.New(),
		QuizID:   qz.ID,
		Text:     "capital of France",
		Type:     quiz.TypeShortAnswer,
		Points:   5,
		Position: 3,
	}
	sa.Options = []quiz.Option{{
		ID:         uuid.New(),
		QuestionID: sa.ID,
		Text:       "Paris",
		IsCorrect:  true,
	}}
	questions = append(questions, sa)

	if err := db.Create(&questions).Error; err != nil {
		t.Fatalf("failed to create questions: %v", err)
	}

	service := attempt.NewService(db, attempt.NewRepository(db), quiz.NewRepository(db))
	return &fixture{db: db, service: service, ownerID: ownerID, quiz: qz}, questions
}

func TestStartAttempt(t *testing.T) {
	db := newTestDB(t)
	fx, _ := seedQuiz(t, db, quiz.StatusPublished)

	takerID := uuid.New()
	ctx := userContext(takerID, "USER")

	t.Run("CreatesAttempt", func(t *testing.T) {
		resp, err := fx.service.Start(ctx, fx.quiz.ID)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		if resp.Status != attempt.StatusInProgress {
			t.Errorf("new attempt should be IN_PROGRESS, got %s", resp.Status)
		}
		if resp.Resumed {
			t.Error("first start should not be a resume")
		}
	})

	t.Run("ResumeReturnsSameAttempt", func(t *testing.T) {
		first, err := fx.service.Start(ctx, fx.quiz.ID)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		second, err := fx.service.Start(ctx, fx.quiz.ID)
		if err != nil {
			t.Fatalf("second Start failed: %v", err)
		}
		if first.AttemptID != second.AttemptID {
			t.Errorf("expected the same attempt id, got %s and %s", first.AttemptID, second.AttemptID)
		}
		if !second.Resumed {
			t.Error("second start should report a resume")
		}

		var count int64
		fx.db.Model(&attempt.QuizAttempt{}).
			Where("user_id = ? AND quiz_id = ?", takerID, fx.quiz.ID).
			Count(&count)
		if count != 1 {
			t.Errorf("expected exactly one attempt row, got %d", count)
		}
	})

	t.Run("UnknownQuiz", func(t *testing.T) {
		_, err := fx.service.Start(ctx, uuid.New())
		if !errors.Is(err, attempt.ErrQuizNotFound) {
			t.Errorf("expected ErrQuizNotFound, got %v", err)
		}
	})
}

func TestStartAttemptDraftPolicy(t *testing.T) {
	db := newTestDB(t)
	fx, _ := seedQuiz(t, db, quiz.StatusDraft)

	t.Run("StrangerGetsNotFound", func(t *testing.T) {
		_, err := fx.service.Start(userContext(uuid.New(), "USER"), fx.quiz.ID)
		if !errors.Is(err, attempt.ErrQuizNotFound) {
			t.Errorf("draft quiz should look nonexistent to strangers, got %v", err)
		}
	})

	t.Run("OwnerMayPreview", func(t *testing.T) {
		if _, err := fx.service.Start(userContext(fx.ownerID, "USER"), fx.quiz.ID); err != nil {
			t.Errorf("owner should be able to preview a draft: %v", err)
		}
	})

	t.Run("AdminMayPreview", func(t *testing.T) {
		if _, err := fx.service.Start(userContext(uuid.New(), "ADMIN"), fx.quiz.ID); err != nil {
			t.Errorf("admin should be able to preview a draft: %v", err)
		}
	})
}

func TestSaveAnswer(t *testing.T) {
	db := newTestDB(t)
	fx, questions := seedQuiz(t, db, quiz.StatusPublished)

	ctx := userContext(uuid.New(), "USER")
	started, err := fx.service.Start(ctx, fx.quiz.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	q1 := questions[0]

	t.Run("UpsertReplacesValue", func(t *testing.T) {
		for _, optIdx := range []int{1, 0} {
			err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
				QuestionID:  q1.ID,
				AnswerValue: q1.Options[optIdx].ID.String(),
			})
			if err != nil {
				t.Fatalf("SaveAnswer failed: %v", err)
			}
		}

		var answers []attempt.UserAnswer
		fx.db.Where("attempt_id = ? AND question_id = ?", started.AttemptID, q1.ID).Find(&answers)
		if len(answers) != 1 {
			t.Fatalf("expected exactly one answer row, got %d", len(answers))
		}
		if answers[0].SelectedOptionID == nil || *answers[0].SelectedOptionID != q1.Options[0].ID {
			t.Error("stored answer should hold the latest value")
		}
		if answers[0].IsCorrect {
			t.Error("provisional answers must never be marked correct")
		}
	})

	t.Run("ShortAnswerStoredAsText", func(t *testing.T) {
		sa := questions[2]
		err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  sa.ID,
			AnswerValue: " Paris ",
		})
		if err != nil {
			t.Fatalf("SaveAnswer failed: %v", err)
		}

		var answer attempt.UserAnswer
		fx.db.Where("attempt_id = ? AND question_id = ?", started.AttemptID, sa.ID).First(&answer)
		if answer.ShortAnswer == nil || *answer.ShortAnswer != " Paris " {
			t.Error("short answer should be stored verbatim")
		}
	})

	t.Run("UnknownOptionRejected", func(t *testing.T) {
		err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  q1.ID,
			AnswerValue: uuid.NewString(),
		})
		if !errors.Is(err, attempt.ErrInvalidAnswer) {
			t.Errorf("expected ErrInvalidAnswer, got %v", err)
		}
	})

	t.Run("QuestionFromAnotherQuizRejected", func(t *testing.T) {
		err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  uuid.New(),
			AnswerValue: "whatever",
		})
		if !errors.Is(err, attempt.ErrQuestionNotFound) {
			t.Errorf("expected ErrQuestionNotFound, got %v", err)
		}
	})

	t.Run("ForeignAttemptLooksMissing", func(t *testing.T) {
		err := fx.service.SaveAnswer(userContext(uuid.New(), "USER"), started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  q1.ID,
			AnswerValue: q1.Options[0].ID.String(),
		})
		if !errors.Is(err, attempt.ErrAttemptNotFound) {
			t.Errorf("expected ErrAttemptNotFound for someone else's attempt, got %v", err)
		}
	})
}

func TestSubmitAttempt(t *testing.T) {
	db := newTestDB(t)
	fx, questions := seedQuiz(t, db, quiz.StatusPublished)

	q1, q2, sa := questions[0], questions[1], questions[2]

	t.Run("ScenarioHalfCorrect", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, err := fx.service.Start(ctx, fx.quiz.ID)
		if err != nil {
			t.Fatalf("Start failed: %v", err)
		}

		var before quiz.Quiz
		fx.db.First(&before, "id = ?", fx.quiz.ID)

		// q1 correct, q2 wrong, short answer correct modulo case and spaces.
		result, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: q1.Options[0].ID.String(),
			q2.ID: q2.Options[2].ID.String(),
			sa.ID: "  paris ",
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		want := float64(10) / 15 * 100
		if result.Score != want {
			t.Errorf("expected score %v, got %v", want, result.Score)
		}
		if result.Status != attempt.StatusCompleted {
			t.Errorf("attempt should be COMPLETED, got %s", result.Status)
		}
		if result.CompletedAt == nil {
			t.Error("completed_at should be set")
		}
		if result.Quiz == nil || result.Quiz.Category == nil {
			t.Error("result should include the quiz and its category")
		}
		if len(result.Answers) != 3 {
			t.Errorf("expected 3 graded answers, got %d", len(result.Answers))
		}

		var after quiz.Quiz
		fx.db.First(&after, "id = ?", fx.quiz.ID)
		if after.TakesCount != before.TakesCount+1 {
			t.Errorf("takes_count should increment by exactly 1, got %d -> %d", before.TakesCount, after.TakesCount)
		}
	})

	t.Run("AllCorrectScoresHundred", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, _ := fx.service.Start(ctx, fx.quiz.ID)

		result, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: q1.Options[0].ID.String(),
			q2.ID: q2.Options[0].ID.String(),
			sa.ID: "Paris",
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		if result.Score != 100.0 {
			t.Errorf("expected 100.0, got %v", result.Score)
		}
	})

	t.Run("MissingAnswersScoreIncorrect", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, _ := fx.service.Start(ctx, fx.quiz.ID)

		result, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{})
		if err != nil {
			t.Fatalf("Submit with no answers must not fail: %v", err)
		}
		if result.Score != 0 {
			t.Errorf("expected score 0, got %v", result.Score)
		}
		if len(result.Answers) != 3 {
			t.Errorf("every question should get an answer row, got %d", len(result.Answers))
		}
		for _, a := range result.Answers {
			if a.IsCorrect {
				t.Error("unanswered question marked correct")
			}
		}
	})

	t.Run("ProvisionalAnswerOverwritten", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, _ := fx.service.Start(ctx, fx.quiz.ID)

		if err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  q1.ID,
			AnswerValue: q1.Options[1].ID.String(),
		}); err != nil {
			t.Fatalf("SaveAnswer failed: %v", err)
		}

		result, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: q1.Options[0].ID.String(),
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		for _, a := range result.Answers {
			if a.QuestionID == q1.ID {
				if a.SelectedOptionID == nil || *a.SelectedOptionID != q1.Options[0].ID {
					t.Error("submission should overwrite the provisional value")
				}
				if !a.IsCorrect {
					t.Error("authoritative grading should mark the final value correct")
				}
			}
		}
	})

	t.Run("UppercaseOptionIDAcceptedAndGradedCorrect", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, _ := fx.service.Start(ctx, fx.quiz.ID)

		upper := strings.ToUpper(q1.Options[0].ID.String())
		if err := fx.service.SaveAnswer(ctx, started.AttemptID, attempt.SaveAnswerDTO{
			QuestionID:  q1.ID,
			AnswerValue: upper,
		}); err != nil {
			t.Fatalf("SaveAnswer should accept an uppercase option id: %v", err)
		}

		result, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: upper,
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		for _, a := range result.Answers {
			if a.QuestionID == q1.ID {
				if a.SelectedOptionID == nil || *a.SelectedOptionID != q1.Options[0].ID {
					t.Error("uppercase id should resolve to the stored option")
				}
				if !a.IsCorrect {
					t.Error("a stored selection of the correct option must grade correct")
				}
			}
		}
		if want := float64(5) / 15 * 100; result.Score != want {
			t.Errorf("expected score %v, got %v", want, result.Score)
		}
	})

	t.Run("ResubmitFailsAndChangesNothing", func(t *testing.T) {
		ctx := userContext(uuid.New(), "USER")
		started, _ := fx.service.Start(ctx, fx.quiz.ID)

		first, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: q1.Options[0].ID.String(),
		})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}

		_, err = fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
			q1.ID: q1.Options[0].ID.String(),
			q2.ID: q2.Options[0].ID.String(),
			sa.ID: "Paris",
		})
		if !errors.Is(err, attempt.ErrAttemptNotFound) {
			t.Fatalf("resubmission should fail with ErrAttemptNotFound, got %v", err)
		}

		var stored attempt.QuizAttempt
		fx.db.First(&stored, "id = ?", started.AttemptID)
		if stored.Score != first.Score {
			t.Errorf("score changed on resubmit: %v -> %v", first.Score, stored.Score)
		}
		if stored.Status != attempt.StatusCompleted {
			t.Errorf("status changed on resubmit: %s", stored.Status)
		}
	})
}

func TestSubmitZeroQuestionQuiz(t *testing.T) {
	db := newTestDB(t)
	fx, _ := seedQuiz(t, db, quiz.StatusPublished)

	// A separate published quiz with no questions at all.
	empty := &quiz.Quiz{
		ID:         uuid.New(),
		UserID:     fx.ownerID,
		CategoryID: fx.quiz.CategoryID,
		Title:      "Empty",
		Status:     quiz.StatusPublished,
		Difficulty: quiz.DifficultyEasy,
	}
	if err := db.Create(empty).Error; err != nil {
		t.Fatalf("failed to create empty quiz: %v", err)
	}

	ctx := userContext(uuid.New(), "USER")
	started, err := fx.service.Start(ctx, empty.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	result, err := fx.service.Submit(ctx, started.AttemptID, nil)
	if err != nil {
		t.Fatalf("Submit of a zero-question quiz must not fail: %v", err)
	}
	if result.Score != 0 {
		t.Errorf("zero-question quiz should score exactly 0, got %v", result.Score)
	}
	if result.Status != attempt.StatusCompleted {
		t.Errorf("attempt should still complete, got %s", result.Status)
	}
}

func TestMalformedTokenSubject(t *testing.T) {
	db := newTestDB(t)
	fx, _ := seedQuiz(t, db, quiz.StatusPublished)

	ctx := auth.ContextWithClaims(context.Background(), &auth.UserClaims{
		UserID: "not-a-uuid",
		Role:   "USER",
	})

	if _, err := fx.service.Start(ctx, fx.quiz.ID); !errors.Is(err, attempt.ErrUnauthorized) {
		t.Errorf("Start with a malformed subject should fail cleanly, got %v", err)
	}
	if _, err := fx.service.ListMine(ctx); !errors.Is(err, attempt.ErrUnauthorized) {
		t.Errorf("ListMine with a malformed subject should fail cleanly, got %v", err)
	}
	if _, err := fx.service.Get(ctx, uuid.New()); !errors.Is(err, attempt.ErrUnauthorized) {
		t.Errorf("Get with a malformed subject should fail cleanly, got %v", err)
	}
}

func TestGetAndListAttempts(t *testing.T) {
	db := newTestDB(t)
	fx, questions := seedQuiz(t, db, quiz.StatusPublished)

	takerID := uuid.New()
	ctx := userContext(takerID, "USER")

	started, err := fx.service.Start(ctx, fx.quiz.ID)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := fx.service.Submit(ctx, started.AttemptID, map[uuid.UUID]string{
		questions[0].ID: questions[0].Options[0].ID.String(),
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	t.Run("OwnerSeesAttempt", func(t *testing.T) {
		a, err := fx.service.Get(ctx, started.AttemptID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if a.ID != started.AttemptID {
			t.Errorf("wrong attempt returned: %s", a.ID)
		}
	})

	t.Run("StrangerGetsNotFound", func(t *testing.T) {
		_, err := fx.service.Get(userContext(uuid.New(), "USER"), started.AttemptID)
		if !errors.Is(err, attempt.ErrAttemptNotFound) {
			t.Errorf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("ListMine", func(t *testing.T) {
		attempts, err := fx.service.ListMine(ctx)
		if err != nil {
			t.Fatalf("ListMine failed: %v", err)
		}
		if len(attempts) != 1 {
			t.Fatalf("expected 1 attempt, got %d", len(attempts))
		}
		if attempts[0].Quiz == nil {
			t.Error("listed attempts should include their quiz")
		}
	})
}

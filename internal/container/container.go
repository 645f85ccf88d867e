package container

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saulo-duarte/quizdeck/internal/attempt"
	"github.com/saulo-duarte/quizdeck/internal/auth"
	"github.com/saulo-duarte/quizdeck/internal/category"
	"github.com/saulo-duarte/quizdeck/internal/config"
	"github.com/saulo-duarte/quizdeck/internal/quiz"
	"github.com/saulo-duarte/quizdeck/internal/user"
)

const takeViewCacheTTL = 10 * time.Minute

type Container struct {
	UserContainer     *user.UserContainer
	CategoryContainer *category.CategoryContainer
	QuizContainer     *quiz.QuizContainer
	AttemptContainer  *attempt.AttemptContainer
}

func New() *Container {
	config.Init()
	auth.Init()
	config.InitCrypto()

	dsn := os.Getenv("DATABASE_DSN")
	if err := config.Connect(context.Background(), dsn); err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	if err := config.AutoMigrate(
		&user.User{},
		&category.Category{},
		&quiz.Quiz{},
		&quiz.Question{},
		&quiz.Option{},
		&attempt.QuizAttempt{},
		&attempt.UserAnswer{},
	); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	cache := quiz.NewNoopTakeViewCache()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		cache = quiz.NewRedisTakeViewCache(client, takeViewCacheTTL)
	}

	userContainer := user.NewUserContainer(config.DB)
	categoryContainer := category.NewCategoryContainer(config.DB)
	quizContainer := quiz.NewQuizContainer(config.DB, cache)
	attemptContainer := attempt.NewAttemptContainer(config.DB, quizContainer.Repo)

	return &Container{
		UserContainer:     userContainer,
		CategoryContainer: categoryContainer,
		QuizContainer:     quizContainer,
		AttemptContainer:  attemptContainer,
	}
}

package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/sirupsen/logrus"

	"github.com/saulo-duarte/quizdeck/internal/container"
	"github.com/saulo-duarte/quizdeck/internal/router"
)

func main() {
	c := container.New()

	r := router.New(router.RouterConfig{
		UserHandler:     c.UserContainer.Handler,
		CategoryHandler: c.CategoryContainer.Handler,
		QuizHandler:     c.QuizContainer.Handler,
		AttemptHandler:  c.AttemptContainer.Handler,
	})

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := httpadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logrus.WithField("port", port).Info("Starting HTTP server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logrus.WithError(err).Fatal("HTTP server stopped")
	}
}

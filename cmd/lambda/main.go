package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"posterlab/internal/bootstrap"
	"posterlab/internal/http/lambdaproxy"
	"posterlab/internal/infra"
)

func main() {
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	if cfg.Region == "" {
		cfg.Region = "lambda"
	}
	logger := infra.NewLogger(cfg.AppEnv)

	c, err := bootstrap.Build(context.Background(), cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build container")
	}
	defer func() { _ = c.Close() }()

	lambda.Start(lambdaproxy.Handler(c.Handler))
}

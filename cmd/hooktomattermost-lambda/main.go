// Command hooktomattermost-lambda serves the Datto RMM and OpenPhone webhooks
// behind AWS API Gateway. The request path picks the integration: anything
// containing "openphone" is an OpenPhone event, everything else a Datto alert.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/swatto/hooktomattermost/internal/handler"
)

// Version can be set at build time via ldflags
var Version = "1.0.0"

func main() {
	cfg, _, err := handler.LoadConfig("")
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := handler.ParseLevel(cfg.LogLevel)
	slog.SetLogLoggerLevel(level)

	if cfg.WebhookURL == "" && !cfg.DryRun {
		slog.Warn("startup: MATTERMOST_WEBHOOK_URL is not set, invocations will fail until it is configured")
	}

	h := handler.New(cfg, Version)
	lambda.Start(h.HandleLambda)
}

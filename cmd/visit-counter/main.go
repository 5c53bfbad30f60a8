package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tckz/go-visit-counter/internal/config"
	"github.com/tckz/go-visit-counter/internal/counter"
	"github.com/tckz/go-visit-counter/internal/handler"
	"github.com/tckz/go-visit-counter/internal/log"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
	cfg     config.Config
)

// Runs once per execution environment, before the first invocation.
func init() {
	godotenv.Load()

	c, err := config.Load()
	if err != nil {
		log.Must(log.NewSugared(myName, "info")).Fatalf("*** config.Load: %v", err)
	}
	cfg = c

	logger = log.Must(log.NewSugared(myName, cfg.LogLevel))
}

func main() {
	logger.Infof("ver=%s, table=%s, backend=%s", version, cfg.TableName, cfg.Backend)

	ctx := context.Background()
	// The store client lives as long as the execution environment; lambda.Start never returns.
	c, _, err := counter.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("*** counter.Open: %v", err)
	}

	h := handler.New(c, logger)
	lambda.Start(h.Handle)
}

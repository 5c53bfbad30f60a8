package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tckz/go-visit-counter/internal/config"
	"github.com/tckz/go-visit-counter/internal/counter"
	"github.com/tckz/go-visit-counter/internal/event"
	"github.com/tckz/go-visit-counter/internal/handler"
	"github.com/tckz/go-visit-counter/internal/log"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optLogLevel = flag.String("log-level", "info", "info|warn|error")
	optEvent    = flag.String("event", "-", "/path/to/event.json or '-' for stdin")
	optBucket   = flag.String("bucket", "", "build an event for this bucket instead of reading --event")
	optKey      = flag.String("key", "", "object key used with --bucket")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewSugared(myName, *optLogLevel))
}

func readEvent() ([]byte, error) {
	if *optBucket != "" {
		return event.New(*optBucket, *optKey, time.Now())
	}

	switch *optEvent {
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(*optEvent)
	}
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("*** config.Load: %v", err)
	}

	raw, err := readEvent()
	if err != nil {
		logger.Fatalf("*** readEvent: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, closeCounter, err := counter.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("*** counter.Open: %v", err)
	}
	defer closeCounter()

	resp, _ := handler.New(c, logger).Handle(ctx, raw)

	b, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		logger.Fatalf("*** json.MarshalIndent: %v", err)
	}
	fmt.Fprintln(os.Stdout, string(b))
}

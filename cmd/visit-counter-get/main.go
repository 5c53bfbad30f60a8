package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tckz/go-visit-counter/internal/config"
	"github.com/tckz/go-visit-counter/internal/counter"
	"github.com/tckz/go-visit-counter/internal/log"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optLogLevel = flag.String("log-level", "info", "info|warn|error")
	optRaw      = flag.Bool("raw", false, "print the bare number")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewSugared(myName, *optLogLevel))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("*** config.Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, closeCounter, err := counter.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("*** counter.Open: %v", err)
	}
	defer closeCounter()

	n, err := c.Get(ctx)
	if err != nil {
		logger.Errorf("Get: %v", err)
		return
	}

	if *optRaw {
		fmt.Fprintf(os.Stdout, "%d\n", n)
		return
	}
	fmt.Fprintf(os.Stdout, "%s/%s %s=%s\n", cfg.TableName, counter.VisitCountID, counter.AttrCount, humanize.Comma(n))
}

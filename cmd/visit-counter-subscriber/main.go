package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tckz/go-visit-counter/internal/config"
	"github.com/tckz/go-visit-counter/internal/counter"
	"github.com/tckz/go-visit-counter/internal/handler"
	"github.com/tckz/go-visit-counter/internal/log"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optWorkers      = flag.Uint64("workers", 8, "Number of workers")
	optLogLevel     = flag.String("log-level", "info", "info|warn|error")
	optSubscription = flag.String("subscription", "", "subscription name")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewSugared(myName, *optLogLevel))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	if *optSubscription == "" {
		logger.Fatalf("*** --subscription must be specified.")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("*** config.Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cl, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		logger.Fatalf("*** pubsub.NewClient: %v", err)
	}
	defer cl.Close()

	c, closeCounter, err := counter.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("*** counter.Open: %v", err)
	}
	defer closeCounter()

	h := handler.New(c, logger)

	var ctOK, ctFailed int64
	eg, ctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < *optWorkers; i++ {
		eg.Go(func() error {
			subs := cl.Subscription(*optSubscription)
			return subs.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
				// No redelivery on failure: the handler has already logged it.
				defer msg.Ack()

				resp, _ := h.Handle(ctx, msg.Data)
				if resp.StatusCode != 200 {
					atomic.AddInt64(&ctFailed, 1)
					logger.Warnf("msgID=%s status=%d body=%s", msg.ID, resp.StatusCode, resp.Body)
					return
				}
				if n := atomic.AddInt64(&ctOK, 1); n%1000 == 0 {
					logger.Infof("processed=%d", n)
				}
			})
		})
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	s := <-sig
	logger.Infof("Received signal: %v", s)
	cancel()

	logger.Infof("Waiting goroutines exit")
	if err := eg.Wait(); err != nil {
		logger.Errorf("Wait: %v", err)
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		v, _ := c.Get(ctx)
		logger.Infof("processed=%d, failed=%d, counter=%d", ctOK, ctFailed, v)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	vh "github.com/tckz/vegetahelper"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"

	"github.com/tckz/go-visit-counter/internal/attack"
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
	optRate = &vh.RateFlag{
		Rate: &vegeta.Rate{
			Freq: 30,
			Per:  1 * time.Second,
		}}
	optDuration     = flag.Duration("duration", 10*time.Second, "Duration of the test [0 = forever]")
	optOutput       = flag.String("output", "", "/path/to/results.bin or 'stdout'")
	optWorkers      = flag.Uint64("workers", vegeta.DefaultWorkers, "Number of workers")
	optLogLevel     = flag.String("log-level", "info", "info|warn|error")
	optHandlerLog   = flag.String("handler-log-level", "warn", "log level of the handler under load")
	optBucket       = flag.String("bucket", "visit-counter-bucket", "bucketName of generated events")
	optInvalidRatio = flag.Int("invalid-every", 0, "send an invalid event every N hits [0 = never]")
)

func init() {
	godotenv.Load()

	flag.Var(optRate, "rate", "Number of requests per time unit")
	flag.Parse()

	logger = log.Must(log.NewSugared(myName, *optLogLevel))
}

var invalidEvent = []byte(`{"detail":{"requestParameters":{}}}`)

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	if *optOutput == "" {
		logger.Fatalf("*** --output must be specified.")
	}

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

	initial, err := c.Get(ctx)
	if err != nil {
		logger.Fatalf("*** Get: %v", err)
	}

	h := handler.New(c, log.Must(log.NewSugared(myName+"/handler", *optHandlerLog)))

	var hits, succeeded int64
	atk := vh.NewAttacker(func(ctx context.Context) (result *vh.HitResult, retErr error) {
		n := atomic.AddInt64(&hits, 1)
		raw := invalidEvent
		if *optInvalidRatio <= 0 || n%int64(*optInvalidRatio) != 0 {
			b, err := event.New(*optBucket, uuid.New().String(), time.Now())
			if err != nil {
				return nil, err
			}
			raw = b
		}

		resp, _ := h.Handle(ctx, raw)
		if resp.StatusCode != 200 {
			return nil, errors.New(resp.Body)
		}
		atomic.AddInt64(&succeeded, 1)
		return result, nil
	}, vh.WithWorkers(*optWorkers))
	res := atk.Attack(ctx, *optRate.Rate, *optDuration, "visit-counter")

	out, err := attack.OpenResultFile(*optOutput)
	if err != nil {
		logger.Fatal(err)
	}
	defer out.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT)

	if _, err := attack.Record(res, out, sig, cancel, logger); err != nil {
		logger.Errorf("*** Record: %v", err)
	}

	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		final, err := c.Get(ctx)
		if err != nil {
			logger.Errorf("Get: %v", err)
			return
		}

		// Other writers on the same record also move final.
		verdict := lo.Ternary(final-initial == succeeded, "OK", "MISMATCH")
		logger.Infof("%s: initial=%s, final=%s, hits=%s, succeeded=%s",
			verdict, humanize.Comma(initial), humanize.Comma(final), humanize.Comma(hits), humanize.Comma(succeeded))
		if verdict != "OK" {
			fmt.Fprintf(os.Stderr, "expected final=%d, got %d\n", initial+succeeded, final)
		}
	}
}

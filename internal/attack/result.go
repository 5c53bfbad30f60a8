// Package attack holds the result plumbing shared by the rate-driven tools.
package attack

import (
	"context"
	"fmt"
	"io"
	"os"

	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"
)

type nopWriteCloser struct {
	io.Writer
}

func (c nopWriteCloser) Close() error {
	return nil
}

// OpenResultFile returns stdout for "stdout", otherwise creates the file.
func OpenResultFile(out string) (io.WriteCloser, error) {
	switch out {
	case "stdout":
		return &nopWriteCloser{os.Stdout}, nil
	default:
		return os.Create(out)
	}
}

// Record encodes every result into w until res is closed and returns how many were written.
// A signal on sig cancels the attack; results still in flight are recorded.
func Record(res <-chan *vegeta.Result, w io.Writer, sig <-chan os.Signal, cancel context.CancelFunc, logger *zap.SugaredLogger) (int, error) {
	enc := vegeta.NewEncoder(w)
	n := 0
	for {
		select {
		case s := <-sig:
			logger.Infof("Received signal: %s", s)
			cancel()
			// keep loop until 'res' is closed.
			sig = nil
		case r, ok := <-res:
			if !ok {
				return n, nil
			}
			if err := enc.Encode(r); err != nil {
				return n, fmt.Errorf("Encode: %w", err)
			}
			n++
		}
	}
}

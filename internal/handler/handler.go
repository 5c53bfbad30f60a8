// Package handler turns one storage event into one atomic add on the visit counter.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/tckz/go-visit-counter/internal/counter"
	"github.com/tckz/go-visit-counter/internal/event"
)

const (
	MessageUpdated = "Visit count updated successfully"
	MessageFailed  = "Error updating visit count"

	logVisitRecorded = "Visit recorded"
)

// Response is what the Lambda host receives; Body is itself JSON text.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type SuccessBody struct {
	Message string `json:"message"`
	Count   string `json:"count"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type Handler struct {
	counter counter.Counter
	logger  *zap.SugaredLogger
}

func New(c counter.Counter, logger *zap.SugaredLogger) *Handler {
	return &Handler{counter: c, logger: logger}
}

// Handle never returns a non-nil error; failures become a 500 Response.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (Response, error) {
	n, err := h.process(ctx, raw)
	if err != nil {
		return h.failure(err), nil
	}
	return h.success(n), nil
}

func (h *Handler) process(ctx context.Context, raw json.RawMessage) (n int64, retErr error) {
	logger := h.logger
	defer func() {
		if r := recover(); r != nil {
			retErr = unknownError(r)
		}
	}()

	ref, err := event.Parse(raw)
	if err != nil {
		return 0, validationError(err)
	}
	logger = logger.With(zap.String("bucket", ref.Bucket), zap.String("key", ref.Key))

	n, err = h.counter.Up(ctx)
	if err != nil {
		return 0, storeError(err)
	}

	logger.Infof("Updated visit count: %d", n)
	logger.Info(logVisitRecorded)
	return n, nil
}

func (h *Handler) success(n int64) Response {
	return Response{
		StatusCode: http.StatusOK,
		Body: mustJSON(SuccessBody{
			Message: MessageUpdated,
			Count:   strconv.FormatInt(n, 10),
		}),
	}
}

func (h *Handler) failure(err error) Response {
	kind := KindUnknown
	var he *Error
	if errors.As(err, &he) {
		kind = he.Kind
	}
	h.logger.With(zap.Stringer("kind", kind)).Errorf("Error: %v", err)

	return Response{
		StatusCode: http.StatusInternalServerError,
		Body: mustJSON(ErrorBody{
			Message: MessageFailed,
			Error:   err.Error(),
		}),
	}
}

// Bodies only hold strings, so Marshal cannot fail.
func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Package counter holds the single visit counter record and the stores it can live in.
package counter

import (
	"context"
	"sync/atomic"
)

const (
	// VisitCountID identifies the one counter record of a deployment.
	VisitCountID = "visit_count"
	// AttrCount is the numeric attribute the counter is kept in.
	AttrCount = "count"
)

type Counter interface {
	// Up adds one and returns the value after the add, as a single atomic store operation.
	Up(ctx context.Context) (int64, error)
	// Get returns the current value, 0 when the record does not exist yet.
	Get(ctx context.Context) (int64, error)
}

var _ Counter = (*LocalCounter)(nil)

// LocalCounter keeps the count in process memory.
type LocalCounter struct {
	count int64
}

func NewLocalCounter(initial int64) *LocalCounter {
	return &LocalCounter{count: initial}
}

func (c *LocalCounter) Get(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&c.count, 0), nil
}

func (c *LocalCounter) Up(ctx context.Context) (int64, error) {
	return atomic.AddInt64(&c.count, 1), nil
}

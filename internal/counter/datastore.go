package counter

import (
	"context"

	"cloud.google.com/go/datastore"
)

var _ Counter = (*DatastoreCounter)(nil)

type counterEntity struct {
	Count int64 `datastore:"count"`
}

// DatastoreCounter keeps the count in entity <kind>/visit_count.
type DatastoreCounter struct {
	client *datastore.Client
	key    *datastore.Key
}

func NewDatastoreCounter(client *datastore.Client, kind string) *DatastoreCounter {
	return &DatastoreCounter{
		client: client,
		key:    datastore.NameKey(kind, VisitCountID, nil),
	}
}

// Up adds inside a transaction. Datastore aborts and retries the loser of
// conflicting transactions, so concurrent adds are all applied.
func (c *DatastoreCounter) Up(ctx context.Context) (int64, error) {
	var n int64
	_, err := c.client.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		// may run more than once
		var rec counterEntity
		err := tx.Get(c.key, &rec)
		if err != nil && err != datastore.ErrNoSuchEntity {
			return err
		}

		rec.Count++
		if _, err := tx.Put(c.key, &rec); err != nil {
			return err
		}
		n = rec.Count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *DatastoreCounter) Get(ctx context.Context) (int64, error) {
	var rec counterEntity
	err := c.client.Get(ctx, c.key, &rec)
	if err == datastore.ErrNoSuchEntity {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Count, nil
}

package store

import (
	"context"

	"expensetracker/internal/core"
)

// Ports between the aggregation core and its collaborators.
type (
	// RecordSource yields the full record collection from wherever the
	// records live (the remote API in production, a fixture in tests).
	RecordSource interface {
		ListRecords(ctx context.Context) ([]core.Record, error)
	}

	// RecordMutator forwards create/update/delete requests to the owner
	// of the data. The core never constructs these itself; it only
	// re-runs aggregation after a mutation is reported successful.
	RecordMutator interface {
		CreateRecord(ctx context.Context, draft core.Record) (core.Record, error)
		UpdateRecord(ctx context.Context, id string, draft core.Record) (core.Record, error)
		DeleteRecord(ctx context.Context, id string) error
	}

	// Snapshot holds the most recently fetched collection for synchronous
	// reads by the serving layer.
	Snapshot interface {
		Records() []core.Record
		Replace(records []core.Record)
	}
)

package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Record is a single spending event as owned by the remote store.
	// The core only ever reads records; creation and deletion happen
	// through the remote API.
	Record struct {
		ID        string
		Amount    decimal.Decimal
		Currency  string
		Comment   string
		CreatedAt time.Time
	}
)

var (
	ErrMissingTimestamp = errors.New("missing timestamp")
	ErrBadTimestamp     = errors.New("unparseable timestamp")
	ErrNegativeAmount   = errors.New("negative amount")
)

// InvalidRecordError reports a record that failed ingestion validation.
// It carries the record ID so the caller can point at the offending row
// instead of failing the whole aggregation pass anonymously.
type InvalidRecordError struct {
	ID  string
	Err error
}

func (e *InvalidRecordError) Error() string {
	if e.ID == "" {
		return "invalid record: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid record %s: %v", e.ID, e.Err)
}

func (e *InvalidRecordError) Unwrap() error { return e.Err }

// createdAtLayouts are the timestamp shapes the remote store has been seen
// to emit. Tried in order; first match wins.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseCreatedAt parses a created_at value from the wire. An empty string
// maps to ErrMissingTimestamp, anything unrecognized to ErrBadTimestamp.
func ParseCreatedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadTimestamp
}

// Validate checks the invariants aggregation relies on. It must be called
// at the ingestion boundary so a malformed record surfaces as a typed
// error before any bucketing happens.
func (r Record) Validate() error {
	if r.CreatedAt.IsZero() {
		return &InvalidRecordError{ID: r.ID, Err: ErrMissingTimestamp}
	}
	if r.Amount.IsNegative() {
		return &InvalidRecordError{ID: r.ID, Err: ErrNegativeAmount}
	}
	return nil
}

// ValidateAll validates every record, returning the first failure.
func ValidateAll(records []Record) error {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

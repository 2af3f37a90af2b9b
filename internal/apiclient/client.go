// Package apiclient talks to the remote expense store. It owns the wire
// format and the ingestion boundary: every record is validated as it is
// decoded, so malformed timestamps surface as typed errors here instead
// of blowing up mid-aggregation.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

const recordsPath = "/api/expenses"

// wireRecord mirrors the remote store's JSON shape. The store owns this
// format; it never leaks past this package.
type wireRecord struct {
	ID        string          `json:"_id"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Comment   string          `json:"comment"`
	CreatedAt string          `json:"created_at"`
}

// mutationBody is the payload for create and update requests. CreatedAt
// is optional on create; the store fills it in when omitted.
type mutationBody struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Comment   string          `json:"comment"`
	CreatedAt string          `json:"created_at,omitempty"`
}

// StatusError reports a non-2xx response from the remote store.
type StatusError struct {
	Method string
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the store at baseURL. There is deliberately no
// retry layer here; a failed call is reported to the caller as-is.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ListRecords fetches the full record collection.
func (c *Client) ListRecords(ctx context.Context) ([]core.Record, error) {
	body, err := c.do(ctx, http.MethodGet, recordsPath, nil)
	if err != nil {
		return nil, err
	}

	var wires []wireRecord
	if err := json.Unmarshal(body, &wires); err != nil {
		return nil, fmt.Errorf("decode expense list: %w", err)
	}

	records := make([]core.Record, 0, len(wires))
	for _, w := range wires {
		r, err := w.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	slog.DebugContext(ctx, "Fetched expense records", "count", len(records))
	return records, nil
}

// CreateRecord asks the store to create an expense and returns the stored
// record as the store echoed it back.
func (c *Client) CreateRecord(ctx context.Context, draft core.Record) (core.Record, error) {
	body, err := c.do(ctx, http.MethodPost, recordsPath, toMutationBody(draft))
	if err != nil {
		return core.Record{}, err
	}
	return decodeOne(body, "create")
}

// UpdateRecord replaces the expense identified by id.
func (c *Client) UpdateRecord(ctx context.Context, id string, draft core.Record) (core.Record, error) {
	body, err := c.do(ctx, http.MethodPut, recordsPath+"/"+id, toMutationBody(draft))
	if err != nil {
		return core.Record{}, err
	}
	return decodeOne(body, "update")
}

// DeleteRecord removes the expense identified by id.
func (c *Client) DeleteRecord(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, recordsPath+"/"+id, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, URL: url, Status: resp.StatusCode}
	}
	return body, nil
}

func decodeOne(body []byte, op string) (core.Record, error) {
	var w wireRecord
	if err := json.Unmarshal(body, &w); err != nil {
		return core.Record{}, fmt.Errorf("decode %s response: %w", op, err)
	}
	return w.toRecord()
}

func (w wireRecord) toRecord() (core.Record, error) {
	createdAt, err := core.ParseCreatedAt(w.CreatedAt)
	if err != nil {
		return core.Record{}, &core.InvalidRecordError{ID: w.ID, Err: err}
	}
	r := core.Record{
		ID:        w.ID,
		Amount:    w.Amount,
		Currency:  w.Currency,
		Comment:   w.Comment,
		CreatedAt: createdAt,
	}
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

func toMutationBody(r core.Record) mutationBody {
	b := mutationBody{
		Amount:   r.Amount,
		Currency: r.Currency,
		Comment:  r.Comment,
	}
	if !r.CreatedAt.IsZero() {
		b.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return b
}

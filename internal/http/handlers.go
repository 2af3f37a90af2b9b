package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/apiclient"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/view"
)

// Wire shapes for the rendering layer. Amounts serialize as decimal
// strings to keep them exact.
type (
	recordDTO struct {
		ID        string          `json:"id"`
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		Comment   string          `json:"comment"`
		CreatedAt time.Time       `json:"created_at"`
	}

	dailyViewDTO struct {
		Date        string          `json:"date"`
		Records     []recordDTO     `json:"records"`
		Total       decimal.Decimal `json:"total"`
		Page        []recordDTO     `json:"page"`
		CurrentPage int             `json:"current_page"`
		TotalPages  int             `json:"total_pages"`
		HasPrev     bool            `json:"has_prev"`
		HasNext     bool            `json:"has_next"`
	}

	bucketDTO struct {
		Day   string          `json:"day"`
		Total decimal.Decimal `json:"total"`
	}

	monthViewDTO struct {
		Month   string          `json:"month"`
		Buckets []bucketDTO     `json:"buckets"`
		Total   decimal.Decimal `json:"total"`
	}

	// expenseRequest is the create/update payload from the rendering
	// layer; created_at is optional on create.
	expenseRequest struct {
		Amount    decimal.Decimal `json:"amount"`
		Currency  string          `json:"currency"`
		Comment   string          `json:"comment"`
		CreatedAt string          `json:"created_at,omitempty"`
	}
)

func toRecordDTOs(records []core.Record) []recordDTO {
	out := make([]recordDTO, len(records))
	for i, r := range records {
		out[i] = recordDTO{
			ID:        r.ID,
			Amount:    r.Amount,
			Currency:  r.Currency,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
	}
	return out
}

// handleDailyView serves the selected day's records, total and page
// slice. The whole view is recomputed from the snapshot unless cached.
func (s *Server) handleDailyView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := parsePageParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("%s:%d", date.Format("2006-01-02"), page)
	v, ok := s.dailyCache.Get(key)
	if !ok {
		state := view.State{SelectedDate: date, CurrentPage: page, PageSize: s.pageSize}
		v, _ = view.Daily(s.snapshot.Records(), state)
		s.dailyCache.Set(key, v)
	} else {
		slog.DebugContext(r.Context(), "Daily view cache hit", applog.FieldDate, key)
	}

	writeJSON(w, http.StatusOK, dailyViewDTO{
		Date:        v.Date.Format("2006-01-02"),
		Records:     toRecordDTOs(v.Records),
		Total:       v.Total,
		Page:        toRecordDTOs(v.Page),
		CurrentPage: v.CurrentPage,
		TotalPages:  v.TotalPages,
		HasPrev:     v.HasPrev,
		HasNext:     v.HasNext,
	})
}

// handleMonthView serves the sparse per-day buckets and total for the
// selected month.
func (s *Server) handleMonthView(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	month, err := parseMonthParam(r, "month")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := month.Format("2006-01")
	v, ok := s.monthCache.Get(key)
	if !ok {
		v = view.Month(s.snapshot.Records(), view.NewState(month, s.pageSize))
		s.monthCache.Set(key, v)
	} else {
		slog.DebugContext(r.Context(), "Month view cache hit", applog.FieldMonth, key)
	}

	buckets := make([]bucketDTO, len(v.Buckets))
	for i, b := range v.Buckets {
		buckets[i] = bucketDTO{Day: b.Day, Total: b.Total}
	}
	writeJSON(w, http.StatusOK, monthViewDTO{
		Month:   key,
		Buckets: buckets,
		Total:   v.Total,
	})
}

// handleExpenses handles POST /api/expenses.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	draft, err := decodeExpenseRequest(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.mutator.CreateRecord(r.Context(), draft)
	if err != nil {
		s.writeMutationError(w, r, "create", err)
		return
	}

	s.recordChanged(r, applog.OpCreate, created.ID)
	writeJSON(w, http.StatusCreated, toRecordDTOs([]core.Record{created})[0])
}

// handleExpenseByID handles PUT and DELETE on /api/expenses/{id}.
func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/expenses/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		draft, err := decodeExpenseRequest(r)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		updated, err := s.mutator.UpdateRecord(r.Context(), id, draft)
		if err != nil {
			s.writeMutationError(w, r, "update", err)
			return
		}
		s.recordChanged(r, applog.OpUpdate, id)
		writeJSON(w, http.StatusOK, toRecordDTOs([]core.Record{updated})[0])

	case http.MethodDelete:
		if err := s.mutator.DeleteRecord(r.Context(), id); err != nil {
			s.writeMutationError(w, r, "delete", err)
			return
		}
		s.recordChanged(r, applog.OpDelete, id)
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func decodeExpenseRequest(r *http.Request) (core.Record, error) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return core.Record{}, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Amount.IsNegative() {
		return core.Record{}, core.ErrNegativeAmount
	}

	draft := core.Record{
		Amount:   req.Amount,
		Currency: strings.TrimSpace(req.Currency),
		Comment:  strings.TrimSpace(req.Comment),
	}
	if req.CreatedAt != "" {
		createdAt, err := core.ParseCreatedAt(req.CreatedAt)
		if err != nil {
			return core.Record{}, err
		}
		draft.CreatedAt = createdAt
	}
	return draft, nil
}

// recordChanged runs the after-mutation bookkeeping: views are stale,
// other processes are told, and the refresh worker is scheduled.
func (s *Server) recordChanged(r *http.Request, op, recordID string) {
	s.InvalidateViews()

	if s.events != nil {
		if err := s.events.PublishChange(r.Context(), op, recordID); err != nil {
			// Mutation already succeeded; periodic refresh will cover
			// the lost event.
			slog.ErrorContext(r.Context(), "Failed to publish change event",
				applog.FieldOperation, op,
				applog.FieldRecordID, recordID,
				applog.FieldError, err)
		}
	}
	if s.onChange != nil {
		s.onChange()
	}
}

func (s *Server) writeMutationError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.ErrorContext(r.Context(), "Mutation failed",
		applog.FieldOperation, op,
		applog.FieldError, err)

	var se *apiclient.StatusError
	if errors.As(err, &se) {
		if se.Status == http.StatusNotFound {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusBadGateway, "remote store error")
		return
	}

	var ire *core.InvalidRecordError
	if errors.As(err, &ire) {
		writeError(w, http.StatusUnprocessableEntity, ire.Error())
		return
	}

	writeError(w, http.StatusBadGateway, "remote store unavailable")
}

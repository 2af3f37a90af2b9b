// Package view derives the render-ready daily and monthly views from a
// record collection and an explicit selection state. The state is plain
// data owned by the serving layer; nothing here is a singleton and every
// view is recomputed from scratch on each call.
package view

import (
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// State is the user-facing selection: which calendar date is active and
// where the pager sits. PageSize is fixed for the lifetime of the state.
type State struct {
	SelectedDate time.Time
	CurrentPage  int
	PageSize     int
}

// NewState starts on page 1 for the given date.
func NewState(selected time.Time, pageSize int) State {
	return State{
		SelectedDate: selected,
		CurrentPage:  1,
		PageSize:     pageSize,
	}
}

// SelectDate moves the selection to a new date. The daily collection is
// about to be re-derived from scratch, so the pager goes back to page 1.
func (s State) SelectDate(d time.Time) State {
	s.SelectedDate = d
	s.CurrentPage = 1
	return s
}

// Advance moves the pager within the daily collection of dailyCount items.
func (s State) Advance(dir core.Direction, dailyCount int) State {
	s.CurrentPage = core.Advance(dir, s.CurrentPage, core.TotalPages(dailyCount, s.PageSize))
	return s
}

// DailyView is everything the rendering layer needs for the selected day:
// the matching records, their total, and the current page slice with its
// navigation flags.
type DailyView struct {
	Date        time.Time
	Records     []core.Record
	Total       decimal.Decimal
	Page        []core.Record
	CurrentPage int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
}

// MonthView is the sparse per-day bucket sequence and total for the
// selected date's calendar month.
type MonthView struct {
	Year    int
	Month   time.Month
	Buckets []core.DayBucket
	Total   decimal.Decimal
}

// Daily computes the daily view for s over records. The pager is clamped
// against the freshly derived collection, so a delete or date change that
// shrank it can never leave the view on an empty page while earlier pages
// still hold data. The possibly-adjusted state is returned alongside the
// view so the caller can keep it.
func Daily(records []core.Record, s State) (DailyView, State) {
	daily := core.FilterByDay(records, s.SelectedDate)
	total := core.TotalPages(len(daily), s.PageSize)
	s.CurrentPage = core.ClampPage(s.CurrentPage, total)

	return DailyView{
		Date:        s.SelectedDate,
		Records:     daily,
		Total:       core.SumAmounts(daily),
		Page:        core.PageSlice(daily, s.CurrentPage, s.PageSize),
		CurrentPage: s.CurrentPage,
		TotalPages:  total,
		HasPrev:     s.CurrentPage > 1,
		HasNext:     s.CurrentPage < total,
	}, s
}

// Month computes the monthly view for s's selected month over records.
func Month(records []core.Record, s State) MonthView {
	return MonthView{
		Year:    s.SelectedDate.Year(),
		Month:   s.SelectedDate.Month(),
		Buckets: core.GroupByDayOfMonth(records, s.SelectedDate),
		Total:   core.TotalForMonth(records, s.SelectedDate),
	}
}

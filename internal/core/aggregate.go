// Package core holds the expense domain types and the pure aggregation
// logic that turns a flat record collection into daily and monthly views.
//
// Everything in this file is side-effect free and recomputed from scratch
// on every call; there is no cached or incremental state.
package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket is the per-day total for one calendar day within a month.
// Day is the two-character day-of-month label ("01".."31") used by the
// chart axis; buckets are only emitted for days that have records.
type DayBucket struct {
	Day   string
	Total decimal.Decimal
}

// FilterByDay returns the records whose CreatedAt falls on the same
// calendar day as day. This is calendar-day equality, not a 24-hour
// window: 23:59 and 00:01 of the same date both match, while records one
// hour apart across midnight do not. Input order is preserved.
func FilterByDay(records []Record, day time.Time) []Record {
	var out []Record
	for _, r := range records {
		if sameDay(r.CreatedAt, day) {
			out = append(out, r)
		}
	}
	return out
}

// SumAmounts sums Amount over the given records; empty input yields zero.
//
// Amounts are summed arithmetically with no regard for Currency: mixing
// currencies produces a unit-less number. That mirrors the remote store's
// behaviour and is deliberate, not a bug to fix here.
func SumAmounts(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// GroupByDayOfMonth buckets the records of month's calendar month by
// day-of-month and sums each bucket. Buckets come back ordered ascending
// by numeric day (2 before 9 before 10 — label order would wrongly put
// "10" first) and only for days that have at least one record, so chart
// callers must accept sparse day coverage.
func GroupByDayOfMonth(records []Record, month time.Time) []DayBucket {
	totals := make(map[int]decimal.Decimal)
	for _, r := range records {
		if !sameMonth(r.CreatedAt, month) {
			continue
		}
		d := r.CreatedAt.Day()
		totals[d] = totals[d].Add(r.Amount)
	}

	days := make([]int, 0, len(totals))
	for d := range totals {
		days = append(days, d)
	}
	sort.Ints(days)

	buckets := make([]DayBucket, 0, len(days))
	for _, d := range days {
		buckets = append(buckets, DayBucket{
			Day:   fmt.Sprintf("%02d", d),
			Total: totals[d],
		})
	}
	return buckets
}

// FilterByMonth returns the records whose CreatedAt falls within month's
// calendar month, order preserved.
func FilterByMonth(records []Record, month time.Time) []Record {
	var out []Record
	for _, r := range records {
		if sameMonth(r.CreatedAt, month) {
			out = append(out, r)
		}
	}
	return out
}

// TotalForMonth sums Amount over the records of month's calendar month.
func TotalForMonth(records []Record, month time.Time) decimal.Decimal {
	return SumAmounts(FilterByMonth(records, month))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

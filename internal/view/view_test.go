package view

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

func rec(id string, amount float64, createdAt string) core.Record {
	t, err := core.ParseCreatedAt(createdAt)
	if err != nil {
		panic(err)
	}
	return core.Record{ID: id, Amount: decimal.NewFromFloat(amount), CreatedAt: t}
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func sevenRecords() []core.Record {
	out := make([]core.Record, 0, 7)
	ids := []string{"a", "b", "c", "d", "e", "f", "g"}
	for _, id := range ids {
		out = append(out, rec(id, 1, "2024-03-05T08:00"))
	}
	return out
}

func TestDailyView(t *testing.T) {
	records := []core.Record{
		rec("a", 10, "2024-03-05T08:00"),
		rec("b", 5, "2024-03-05T20:00"),
		rec("c", 7, "2024-03-10T10:00"),
	}
	s := NewState(day(2024, 3, 5), 3)

	v, _ := Daily(records, s)
	if len(v.Records) != 2 {
		t.Fatalf("daily records = %d, want 2", len(v.Records))
	}
	if !v.Total.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("daily total = %s, want 15", v.Total)
	}
	if v.TotalPages != 1 || v.HasPrev || v.HasNext {
		t.Fatalf("unexpected paging: %+v", v)
	}
}

func TestDailyViewPaging(t *testing.T) {
	records := sevenRecords()
	s := NewState(day(2024, 3, 5), 3)

	v, s := Daily(records, s)
	if v.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", v.TotalPages)
	}
	if v.HasPrev || !v.HasNext {
		t.Fatalf("page 1 flags wrong: %+v", v)
	}

	s = s.Advance(core.Next, len(v.Records))
	s = s.Advance(core.Next, len(v.Records))
	v, s = Daily(records, s)
	if v.CurrentPage != 3 {
		t.Fatalf("current page = %d, want 3", v.CurrentPage)
	}
	if len(v.Page) != 1 || v.Page[0].ID != "g" {
		t.Fatalf("last page = %+v, want exactly record g", v.Page)
	}
	if !v.HasPrev || v.HasNext {
		t.Fatalf("last page flags wrong: %+v", v)
	}

	// Next at the last page is a no-op.
	s = s.Advance(core.Next, len(v.Records))
	if s.CurrentPage != 3 {
		t.Fatalf("advance past end moved to page %d", s.CurrentPage)
	}
}

func TestDailyViewClampsAfterShrink(t *testing.T) {
	records := sevenRecords()
	s := NewState(day(2024, 3, 5), 3)
	v, s := Daily(records, s)
	s = s.Advance(core.Next, len(v.Records))
	s = s.Advance(core.Next, len(v.Records))

	// Deletes shrink the collection to 4 items (2 pages); the pager was
	// sitting on page 3 and must be pulled back, not left empty.
	v, s = Daily(records[:4], s)
	if v.CurrentPage != 2 {
		t.Fatalf("current page = %d, want clamped 2", v.CurrentPage)
	}
	if len(v.Page) != 1 {
		t.Fatalf("page slice = %d items, want 1", len(v.Page))
	}
}

func TestSelectDateResetsPage(t *testing.T) {
	s := NewState(day(2024, 3, 5), 3)
	s.CurrentPage = 2
	s = s.SelectDate(day(2024, 3, 6))
	if s.CurrentPage != 1 {
		t.Fatalf("page after date change = %d, want 1", s.CurrentPage)
	}
}

func TestMonthView(t *testing.T) {
	records := []core.Record{
		rec("a", 10, "2024-03-05T08:00"),
		rec("b", 5, "2024-03-05T20:00"),
		rec("c", 7, "2024-03-10T10:00"),
	}
	v := Month(records, NewState(day(2024, 3, 5), 3))
	if v.Year != 2024 || v.Month != time.March {
		t.Fatalf("month view for %d-%d, want 2024-3", v.Year, v.Month)
	}
	if len(v.Buckets) != 2 {
		t.Fatalf("buckets = %d, want 2", len(v.Buckets))
	}
	if !v.Total.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("month total = %s, want 22", v.Total)
	}
}

func TestViewsEmptyCollection(t *testing.T) {
	s := NewState(day(2024, 3, 5), 3)
	v, _ := Daily(nil, s)
	if len(v.Records) != 0 || !v.Total.IsZero() || v.TotalPages != 0 {
		t.Fatalf("empty daily view not empty: %+v", v)
	}
	m := Month(nil, s)
	if len(m.Buckets) != 0 || !m.Total.IsZero() {
		t.Fatalf("empty month view not empty: %+v", m)
	}
}

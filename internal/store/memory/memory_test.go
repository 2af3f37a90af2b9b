package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

func TestStoreReplaceAndRead(t *testing.T) {
	s := New()
	if s.Len() != 0 || !s.FetchedAt().IsZero() {
		t.Fatalf("fresh store not empty: len=%d fetchedAt=%v", s.Len(), s.FetchedAt())
	}

	records := []core.Record{
		{ID: "a", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()},
		{ID: "b", Amount: decimal.NewFromInt(2), CreatedAt: time.Now()},
	}
	s.Replace(records)
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.FetchedAt().IsZero() {
		t.Fatal("FetchedAt not set after Replace")
	}

	got := s.Records()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewSeeded([]core.Record{{ID: "a", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()}})

	got := s.Records()
	got[0].ID = "mutated"
	if s.Records()[0].ID != "a" {
		t.Fatal("caller mutation leaked into the snapshot")
	}

	in := []core.Record{{ID: "x", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()}}
	s.Replace(in)
	in[0].ID = "mutated"
	if s.Records()[0].ID != "x" {
		t.Fatal("input mutation leaked into the snapshot")
	}
}

func TestStoreReplaceShrinks(t *testing.T) {
	s := NewSeeded([]core.Record{
		{ID: "a", Amount: decimal.NewFromInt(1), CreatedAt: time.Now()},
		{ID: "b", Amount: decimal.NewFromInt(2), CreatedAt: time.Now()},
	})
	s.Replace(nil)
	if s.Len() != 0 {
		t.Fatalf("len after empty replace = %d, want 0", s.Len())
	}
}

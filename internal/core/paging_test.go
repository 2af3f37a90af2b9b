package core

import "testing"

func TestTotalPages(t *testing.T) {
	cases := []struct {
		count, size, want int
	}{
		{7, 3, 3},
		{6, 3, 2},
		{1, 3, 1},
		{0, 3, 0},
		{7, 0, 0},
		{-1, 3, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.count, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tc.count, tc.size, got, tc.want)
		}
	}
}

func TestPageSlice(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e", "f", "g"}

	cases := []struct {
		page, size int
		want       []string
	}{
		{1, 3, []string{"a", "b", "c"}},
		{2, 3, []string{"d", "e", "f"}},
		{3, 3, []string{"g"}}, // last, partial page
		{4, 3, nil},           // past the end
		{0, 3, nil},           // pages are 1-based
		{1, 0, nil},
	}
	for _, tc := range cases {
		got := PageSlice(items, tc.page, tc.size)
		if len(got) != len(tc.want) {
			t.Fatalf("PageSlice(page=%d, size=%d) = %v, want %v", tc.page, tc.size, got, tc.want)
		}
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Fatalf("PageSlice(page=%d, size=%d)[%d] = %s, want %s", tc.page, tc.size, i, got[i], tc.want[i])
			}
		}
	}
}

func TestAdvance(t *testing.T) {
	cases := []struct {
		name  string
		dir   Direction
		page  int
		total int
		want  int
	}{
		{"next in range", Next, 1, 3, 2},
		{"next at last page stays", Next, 3, 3, 3},
		{"previous in range", Previous, 2, 3, 1},
		{"previous at first page stays", Previous, 1, 3, 1},
		{"unknown direction is a no-op", Direction("sideways"), 2, 3, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Advance(tc.dir, tc.page, tc.total); got != tc.want {
				t.Fatalf("Advance(%q, %d, %d) = %d, want %d", tc.dir, tc.page, tc.total, got, tc.want)
			}
		})
	}
}

func TestAdvanceIdempotentAtBoundaries(t *testing.T) {
	page := 3
	for i := 0; i < 5; i++ {
		page = Advance(Next, page, 3)
	}
	if page != 3 {
		t.Fatalf("repeated next overflowed to %d", page)
	}
	page = 1
	for i := 0; i < 5; i++ {
		page = Advance(Previous, page, 3)
	}
	if page != 1 {
		t.Fatalf("repeated previous underflowed to %d", page)
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, total, want int
	}{
		{5, 3, 3}, // collection shrank under the pager
		{2, 3, 2},
		{2, 0, 1}, // everything gone, reset to first page
		{0, 3, 1},
	}
	for _, tc := range cases {
		if got := ClampPage(tc.page, tc.total); got != tc.want {
			t.Fatalf("ClampPage(%d, %d) = %d, want %d", tc.page, tc.total, got, tc.want)
		}
	}
}

package client

import (
	"testing"

	"branchpulse/pkg/domain"
)

func sampleFeedback() []domain.Feedback {
	return []domain.Feedback{
		{ID: "f1", Branch: "MANAMA", VisitDate: "2026-08-01"},
		{ID: "f2", Branch: "SITRA", VisitDate: "2026-08-10"},
		{ID: "f3", Branch: "MANAMA", VisitDate: "2026-08-20"},
		{ID: "f4", Branch: "MUHARRAQ", VisitDate: ""},
	}
}

func ids(items []domain.Feedback) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestFilterByDateRange(t *testing.T) {
	items := sampleFeedback()

	for _, tc := range []struct {
		name     string
		from, to string
		want     []string
	}{
		{"no bounds keeps all", "", "", []string{"f1", "f2", "f3", "f4"}},
		{"inclusive lower bound", "2026-08-10", "", []string{"f2", "f3"}},
		{"inclusive upper bound", "", "2026-08-10", []string{"f1", "f2"}},
		{"both bounds on the record dates", "2026-08-01", "2026-08-20", []string{"f1", "f2", "f3"}},
		{"narrow window", "2026-08-05", "2026-08-15", []string{"f2"}},
		{"empty window", "2026-09-01", "2026-09-30", []string{}},
	} {
		got := ids(FilterByDateRange(items, tc.from, tc.to))
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
			}
		}
	}
}

func TestFilterByDateRangeDropsUndatedWhenBounded(t *testing.T) {
	items := sampleFeedback()
	got := FilterByDateRange(items, "2026-01-01", "")
	for _, item := range got {
		if item.ID == "f4" {
			t.Fatalf("record without a visit date must not match a bounded range")
		}
	}
}

func TestFilterByBranch(t *testing.T) {
	items := sampleFeedback()

	got := ids(FilterByBranch(items, "MANAMA"))
	if len(got) != 2 || got[0] != "f1" || got[1] != "f3" {
		t.Fatalf("branch filter: got %v", got)
	}
	if len(FilterByBranch(items, "")) != len(items) {
		t.Fatalf("empty branch must keep all records")
	}
	if len(FilterByBranch(items, "ATLANTIS")) != 0 {
		t.Fatalf("unknown branch must match nothing")
	}
}

func TestFiltersCompose(t *testing.T) {
	items := sampleFeedback()
	got := FilterByBranch(FilterByDateRange(items, "2026-08-01", "2026-08-31"), "MANAMA")
	if len(got) != 2 || got[0].ID != "f1" || got[1].ID != "f3" {
		t.Fatalf("composed filters: got %v", ids(got))
	}
}

package client

import "branchpulse/pkg/domain"

// FilterByDateRange keeps records whose visit date falls inside the range.
// Bounds are inclusive, compare as "YYYY-MM-DD" strings, and an empty bound
// leaves that side unconstrained. Records without a visit date are dropped
// whenever any bound is supplied.
func FilterByDateRange(items []domain.Feedback, from, to string) []domain.Feedback {
	if from == "" && to == "" {
		return items
	}
	out := make([]domain.Feedback, 0, len(items))
	for _, item := range items {
		if item.VisitDate == "" {
			continue
		}
		if from != "" && item.VisitDate < from {
			continue
		}
		if to != "" && item.VisitDate > to {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FilterByBranch keeps records for the given branch. An empty branch keeps
// everything.
func FilterByBranch(items []domain.Feedback, branch string) []domain.Feedback {
	if branch == "" {
		return items
	}
	out := make([]domain.Feedback, 0, len(items))
	for _, item := range items {
		if item.Branch == branch {
			out = append(out, item)
		}
	}
	return out
}

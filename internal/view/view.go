// Package view derives the displayed slice of a normalized case list:
// filtering, ordering, pagination, and per-case disclosure. It is purely
// derived state — the underlying records are never mutated and nothing here
// is persisted.
package view

import (
	"fmt"
	"sort"
	"strings"

	"veritas-console/internal/record"
)

// SortKey selects the display order of the case list.
type SortKey string

const (
	SortNewest     SortKey = "Newest"
	SortOldest     SortKey = "Oldest"
	SortMostCited  SortKey = "MostCited"
	SortLeastCited SortKey = "LeastCited"
)

// State is the ephemeral view state over one case list. Mutators that change
// which cases are visible (filter, sort) reset the page to 1; Apply clamps
// the page into the valid range afterwards.
type State struct {
	CourtFilter  string
	MinCitations int
	Sort         SortKey
	Page         int
	PageSize     int

	expanded map[string]bool
}

// NewState returns view state with the default ordering (newest first) on
// page 1. pageSize is validated by Apply, not here, so a misconfigured value
// still fails loudly at the point of use.
func NewState(pageSize int) *State {
	return &State{
		Sort:     SortNewest,
		Page:     1,
		PageSize: pageSize,
		expanded: make(map[string]bool),
	}
}

// SetCourtFilter sets the case-insensitive court substring filter.
func (s *State) SetCourtFilter(substr string) {
	s.CourtFilter = substr
	s.Page = 1
}

// SetMinCitations sets the minimum citation count filter.
func (s *State) SetMinCitations(n int) {
	s.MinCitations = n
	s.Page = 1
}

// SetSort changes the sort order.
func (s *State) SetSort(key SortKey) {
	s.Sort = key
	s.Page = 1
}

// SetPage requests a page. Out-of-range values are clamped by Apply.
func (s *State) SetPage(n int) {
	s.Page = n
}

// ToggleExpanded flips the disclosure state of one case. Disclosure is read
// only by the rendering layer and never triggers recomputation.
func (s *State) ToggleExpanded(id string) {
	if s.expanded == nil {
		s.expanded = make(map[string]bool)
	}
	if s.expanded[id] {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = true
}

// IsExpanded reports whether a case's detail is currently disclosed.
func (s *State) IsExpanded(id string) bool {
	return s.expanded[id]
}

// CollapseAll clears all disclosure state, e.g. when a new result replaces
// the case list.
func (s *State) CollapseAll() {
	s.expanded = make(map[string]bool)
}

// Page is one rendered slice of the filtered, sorted case list.
type Page struct {
	Cases      []record.CaseRecord
	Page       int
	TotalPages int
	TotalCount int
}

// Apply filters, sorts, and paginates cases according to state. The input
// slice is left untouched. A non-positive PageSize is a programming error
// with no sane default (it would poison the page-count arithmetic), so it is
// rejected immediately instead of being silently corrected. The state's Page
// is clamped into [1, TotalPages] and written back.
func Apply(cases []record.CaseRecord, s *State) (Page, error) {
	if s.PageSize <= 0 {
		return Page{}, fmt.Errorf("view: page size must be positive, got %d", s.PageSize)
	}

	filtered := filter(cases, s)
	sorted := sortCases(filtered, s.Sort)

	total := len(sorted)
	totalPages := (total + s.PageSize - 1) / s.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := s.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	s.Page = page

	start := (page - 1) * s.PageSize
	end := start + s.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Cases:      sorted[start:end],
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}

// filter keeps a case iff its court contains the filter substring
// (case-insensitive) and its citation count meets the threshold. An empty
// filter passes everything through.
func filter(cases []record.CaseRecord, s *State) []record.CaseRecord {
	court := strings.ToLower(s.CourtFilter)
	out := make([]record.CaseRecord, 0, len(cases))
	for _, c := range cases {
		if court != "" && !strings.Contains(strings.ToLower(c.Court), court) {
			continue
		}
		if c.CitationCount < s.MinCitations {
			continue
		}
		out = append(out, c)
	}
	return out
}

// sortCases returns a sorted copy. Sorting is stable so that ties keep their
// input order; cases with an empty decision date sort last regardless of
// date direction.
func sortCases(cases []record.CaseRecord, key SortKey) []record.CaseRecord {
	out := make([]record.CaseRecord, len(cases))
	copy(out, cases)

	switch key {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].DecisionDate, out[j].DecisionDate
			if di == "" {
				return false
			}
			if dj == "" {
				return true
			}
			return di > dj
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return dateLess(out[i].DecisionDate, out[j].DecisionDate)
		})
	case SortMostCited:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CitationCount > out[j].CitationCount
		})
	case SortLeastCited:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CitationCount < out[j].CitationCount
		})
	}
	return out
}

// dateLess orders backend-supplied date strings lexicographically, with the
// empty date greater than everything so it always lands at the end.
func dateLess(a, b string) bool {
	if a == "" {
		return false
	}
	if b == "" {
		return true
	}
	return a < b
}

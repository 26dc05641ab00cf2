package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veritas-console/internal/normalize"
	"veritas-console/internal/record"
)

func caseList(n int) []record.CaseRecord {
	cases := make([]record.CaseRecord, n)
	for i := range cases {
		cases[i] = record.CaseRecord{ID: string(rune('a' + i))}
	}
	return cases
}

func TestApplyRejectsNonPositivePageSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		s := NewState(size)
		_, err := Apply(caseList(3), s)
		require.Error(t, err, "page size %d must be rejected", size)
	}
}

func TestPaginationBounds(t *testing.T) {
	s := NewState(10)
	page, err := Apply(caseList(23), s)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 23, page.TotalCount)
	assert.Len(t, page.Cases, 10)

	// Requesting a page past the end clamps to the last page, never an
	// empty slice.
	s.SetPage(5)
	page, err = Apply(caseList(23), s)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 3, s.Page, "clamped page is written back")
	assert.Len(t, page.Cases, 3)

	s.SetPage(-2)
	page, err = Apply(caseList(23), s)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestEmptyListStillHasOnePage(t *testing.T) {
	s := NewState(10)
	page, err := Apply(nil, s)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Cases)
}

func TestCourtFilterCaseInsensitive(t *testing.T) {
	cases := []record.CaseRecord{
		{ID: "1", Court: "Supreme Court of the United States"},
		{ID: "2", Court: "9th Circuit"},
		{ID: "3", Court: "supreme court of ohio"},
	}
	s := NewState(10)
	s.SetCourtFilter("Supreme")

	page, err := Apply(cases, s)
	require.NoError(t, err)
	require.Len(t, page.Cases, 2)
	assert.Equal(t, "1", page.Cases[0].ID)
	assert.Equal(t, "3", page.Cases[1].ID)
}

func TestMinCitationsFilter(t *testing.T) {
	cases := []record.CaseRecord{
		{ID: "1", CitationCount: 5},
		{ID: "2", CitationCount: 9},
	}
	s := NewState(10)
	s.SetMinCitations(6)
	s.SetSort(SortMostCited)

	page, err := Apply(cases, s)
	require.NoError(t, err)
	require.Len(t, page.Cases, 1)
	assert.Equal(t, "2", page.Cases[0].ID)
}

func TestSortStabilityOnCitationTies(t *testing.T) {
	cases := []record.CaseRecord{
		{ID: "first", CitationCount: 4},
		{ID: "second", CitationCount: 4},
		{ID: "third", CitationCount: 9},
		{ID: "fourth", CitationCount: 4},
	}

	s := NewState(10)
	s.SetSort(SortMostCited)
	page, err := Apply(cases, s)
	require.NoError(t, err)
	require.Len(t, page.Cases, 4)
	assert.Equal(t, []string{"third", "first", "second", "fourth"}, ids(page.Cases))

	s.SetSort(SortLeastCited)
	page, err = Apply(cases, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "fourth", "third"}, ids(page.Cases))
}

func TestDateSortEmptyDatesLast(t *testing.T) {
	cases := []record.CaseRecord{
		{ID: "undated"},
		{ID: "old", DecisionDate: "1990-05-01"},
		{ID: "new", DecisionDate: "2021-11-30"},
	}

	s := NewState(10)
	s.SetSort(SortNewest)
	page, err := Apply(cases, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old", "undated"}, ids(page.Cases))

	s.SetSort(SortOldest)
	page, err = Apply(cases, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "new", "undated"}, ids(page.Cases))
}

func TestFilterAndSortResetPage(t *testing.T) {
	s := NewState(5)
	s.SetPage(3)
	s.SetCourtFilter("x")
	assert.Equal(t, 1, s.Page)

	s.SetPage(2)
	s.SetSort(SortOldest)
	assert.Equal(t, 1, s.Page)

	s.SetPage(4)
	s.SetMinCitations(2)
	assert.Equal(t, 1, s.Page)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	cases := []record.CaseRecord{
		{ID: "b", CitationCount: 1},
		{ID: "a", CitationCount: 2},
	}
	s := NewState(10)
	s.SetSort(SortMostCited)

	_, err := Apply(cases, s)
	require.NoError(t, err)
	assert.Equal(t, "b", cases[0].ID, "input order must be preserved")
	assert.Equal(t, "a", cases[1].ID)
}

func TestDisclosureToggle(t *testing.T) {
	s := NewState(10)
	assert.False(t, s.IsExpanded("c1"))

	s.ToggleExpanded("c1")
	assert.True(t, s.IsExpanded("c1"))

	s.ToggleExpanded("c1")
	assert.False(t, s.IsExpanded("c1"))

	s.ToggleExpanded("c1")
	s.ToggleExpanded("c2")
	s.CollapseAll()
	assert.False(t, s.IsExpanded("c1"))
	assert.False(t, s.IsExpanded("c2"))
}

// End-to-end: raw payload through the normalizer into the view engine.
func TestNormalizedPayloadThroughView(t *testing.T) {
	payload := `{"cases":[
		{"case_id":"1","citations_count":5,"date":"2020-01-01"},
		{"case_id":"2","citations_count":9,"date":"2023-01-01"}
	]}`
	res := normalize.Normalize([]byte(payload))
	require.Len(t, res.Cases, 2)

	s := NewState(10)
	s.SetMinCitations(6)
	s.SetSort(SortMostCited)

	page, err := Apply(res.Cases, s)
	require.NoError(t, err)
	require.Len(t, page.Cases, 1)
	assert.Equal(t, "2", page.Cases[0].ID)
}

func ids(cases []record.CaseRecord) []string {
	out := make([]string, len(cases))
	for i, c := range cases {
		out[i] = c.ID
	}
	return out
}

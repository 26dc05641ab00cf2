package ui

import (
	"context"
	"log"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"veritas-console/internal/history"
	"veritas-console/internal/record"
	"veritas-console/internal/view"
)

// scriptedResolver serves canned stored results per query, optionally
// blocking a query on a gate to simulate a slow resolution.
type scriptedResolver struct {
	payloads map[string][]byte
	gates    map[string]chan struct{}
}

func (s *scriptedResolver) StoredResult(ctx context.Context, query, timestamp string) ([]byte, error) {
	if gate, ok := s.gates[query]; ok {
		<-gate
	}
	return s.payloads[query], nil
}

func newTestPresenter(resolver history.Resolver) *Presenter {
	logger := log.New(os.Stdout, "[test] ", log.LstdFlags)
	return NewPresenter(history.NewCache(resolver, logger), 10, logger)
}

func histEntry(query string) record.HistoryEntry {
	return record.HistoryEntry{Query: query, Timestamp: "2024-06-01T12:00:00Z"}
}

func TestSelectHistoryCommitsResolvedCases(t *testing.T) {
	resolver := &scriptedResolver{
		payloads: map[string][]byte{
			"q": []byte(`{"cases":[{"case_id":"1"},{"case_id":"2"}]}`),
		},
	}
	p := newTestPresenter(resolver)

	done := make(chan struct{})
	p.SelectHistory(context.Background(), histEntry("q"), func(cases []record.CaseRecord, err error) {
		if err != nil {
			t.Errorf("unexpected resolve error: %v", err)
		}
		if len(cases) != 2 {
			t.Errorf("expected 2 cases, got %d", len(cases))
		}
		if !p.CommitHistory(histEntry("q"), cases) {
			t.Error("commit for the live selection must be accepted")
		}
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("commit callback never fired")
	}

	if got := len(p.Result().Cases); got != 2 {
		t.Errorf("presenter result should hold 2 cases, got %d", got)
	}
	if p.SelectedKey() != histEntry("q").Key() {
		t.Error("presenter should be bound to the selected history key")
	}
}

func TestStaleResolutionIsDiscarded(t *testing.T) {
	slowGate := make(chan struct{})
	resolver := &scriptedResolver{
		payloads: map[string][]byte{
			"slow": []byte(`{"cases":[{"case_id":"stale-1"},{"case_id":"stale-2"},{"case_id":"stale-3"}]}`),
			"fast": []byte(`{"cases":[{"case_id":"fresh"}]}`),
		},
		gates: map[string]chan struct{}{"slow": slowGate},
	}
	p := newTestPresenter(resolver)

	var staleCommits int64
	p.SelectHistory(context.Background(), histEntry("slow"), func([]record.CaseRecord, error) {
		atomic.AddInt64(&staleCommits, 1)
	})

	// The user moves on before the first resolution settles.
	fastDone := make(chan struct{})
	p.SelectHistory(context.Background(), histEntry("fast"), func(cases []record.CaseRecord, err error) {
		if err != nil {
			t.Errorf("unexpected resolve error: %v", err)
		}
		p.CommitHistory(histEntry("fast"), cases)
		close(fastDone)
	})
	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		t.Fatal("fast resolution never committed")
	}

	// Now let the abandoned resolution settle and give it time to run.
	close(slowGate)
	time.Sleep(100 * time.Millisecond)

	if n := atomic.LoadInt64(&staleCommits); n != 0 {
		t.Errorf("stale resolution committed %d times, want 0", n)
	}
	cases := p.Result().Cases
	if len(cases) != 1 || cases[0].ID != "fresh" {
		t.Errorf("late result overwrote the view: got %+v", cases)
	}
}

// The resolution goroutine must not mutate view state itself: nothing moves
// until CommitHistory runs, and a commit for a superseded selection is
// refused. Together with TestConcurrentKeyHandlingDuringResolution this
// pins all view-state writes to the event loop thread.
func TestResolutionDoesNotTouchViewState(t *testing.T) {
	resolver := &scriptedResolver{
		payloads: map[string][]byte{
			"q": []byte(`{"cases":[{"case_id":"1"}]}`),
		},
	}
	p := newTestPresenter(resolver)
	p.SetResult(&record.AnalysisResult{
		Cases:        []record.CaseRecord{{ID: "old-1"}, {ID: "old-2"}},
		TotalResults: 2,
	})
	p.State().ToggleExpanded("old-1")
	p.State().SetPage(1)

	var gotCases []record.CaseRecord
	done := make(chan struct{})
	p.SelectHistory(context.Background(), histEntry("q"), func(cases []record.CaseRecord, err error) {
		if err != nil {
			t.Errorf("unexpected resolve error: %v", err)
		}
		gotCases = cases
		close(done)
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("resolution never settled")
	}

	// Settled but not committed: the view is untouched.
	if got := len(p.Result().Cases); got != 2 {
		t.Errorf("result replaced before commit: %d cases", got)
	}
	if !p.State().IsExpanded("old-1") {
		t.Error("disclosure reset before commit")
	}

	if !p.CommitHistory(histEntry("q"), gotCases) {
		t.Fatal("commit for the live selection must be accepted")
	}
	if got := len(p.Result().Cases); got != 1 {
		t.Errorf("commit should install 1 case, got %d", got)
	}
	if p.State().IsExpanded("old-1") {
		t.Error("commit must collapse disclosure")
	}

	// A commit for an entry the user has moved away from is refused.
	p.SelectHistory(context.Background(), histEntry("q"), func([]record.CaseRecord, error) {})
	if p.CommitHistory(histEntry("superseded"), gotCases) {
		t.Error("commit for a superseded selection must be refused")
	}
}

// Simulates the tview application: one goroutine both handles keys and
// drains queued commits, while the resolution settles in the background.
// Run with the race detector, this fails if any path off the event loop
// writes view state.
func TestConcurrentKeyHandlingDuringResolution(t *testing.T) {
	gate := make(chan struct{})
	resolver := &scriptedResolver{
		payloads: map[string][]byte{
			"q": []byte(`{"cases":[{"case_id":"1"}]}`),
		},
		gates: map[string]chan struct{}{"q": gate},
	}
	p := newTestPresenter(resolver)
	p.SetResult(&record.AnalysisResult{
		Cases:        []record.CaseRecord{{ID: "c1"}},
		TotalResults: 1,
	})

	queue := make(chan func(), 1)
	entry := histEntry("q")
	p.SelectHistory(context.Background(), entry, func(cases []record.CaseRecord, err error) {
		queue <- func() {
			if err != nil {
				t.Errorf("unexpected resolve error: %v", err)
			}
			p.CommitHistory(entry, cases)
		}
	})
	close(gate)

	deadline := time.After(2 * time.Second)
	for committed := false; !committed; {
		// The user keeps toggling and paging while the replay is in flight.
		p.State().ToggleExpanded("c1")
		p.State().SetPage(2)

		select {
		case fn := <-queue:
			fn()
			committed = true
		case <-deadline:
			t.Fatal("commit never queued")
		default:
		}
	}

	if p.State().Page != 1 {
		t.Errorf("commit should reset to page 1, got %d", p.State().Page)
	}
	if got := len(p.Result().Cases); got != 1 || p.Result().Cases[0].ID != "1" {
		t.Errorf("committed result not installed: %+v", p.Result().Cases)
	}
}

func TestSetResultClearsSelectionAndViewState(t *testing.T) {
	p := newTestPresenter(&scriptedResolver{payloads: map[string][]byte{}})

	p.State().SetCourtFilter("circuit")
	p.State().SetMinCitations(3)
	p.State().ToggleExpanded("c1")

	p.SetResult(&record.AnalysisResult{
		Cases:        []record.CaseRecord{{ID: "c1"}, {ID: "c2"}},
		TotalResults: 2,
	})

	if p.SelectedKey() != "" {
		t.Error("a fresh result must unbind the history selection")
	}
	if p.State().CourtFilter != "" || p.State().MinCitations != 0 {
		t.Error("filters must reset with a fresh result")
	}
	if p.State().IsExpanded("c1") {
		t.Error("disclosure must collapse with a fresh result")
	}

	page, err := p.CurrentPage()
	if err != nil {
		t.Fatalf("CurrentPage failed: %v", err)
	}
	if page.TotalCount != 2 || page.Page != 1 {
		t.Errorf("expected 2 cases on page 1, got %d on page %d", page.TotalCount, page.Page)
	}
}

func TestCurrentPageRespectsViewState(t *testing.T) {
	p := newTestPresenter(&scriptedResolver{payloads: map[string][]byte{}})

	cases := make([]record.CaseRecord, 23)
	for i := range cases {
		cases[i] = record.CaseRecord{ID: string(rune('a' + i))}
	}
	p.SetResult(&record.AnalysisResult{Cases: cases, TotalResults: 23})

	p.State().SetPage(5)
	page, err := p.CurrentPage()
	if err != nil {
		t.Fatalf("CurrentPage failed: %v", err)
	}
	if page.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", page.TotalPages)
	}
	if page.Page != 3 {
		t.Errorf("expected clamp to page 3, got %d", page.Page)
	}
	if p.State().Sort != view.SortNewest {
		t.Errorf("default sort should be Newest, got %s", p.State().Sort)
	}
}

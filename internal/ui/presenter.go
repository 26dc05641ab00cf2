package ui

import (
	"context"
	"log"
	"sync"

	"veritas-console/internal/history"
	"veritas-console/internal/record"
	"veritas-console/internal/view"
)

// Presenter owns the console screen's data: the current normalized result,
// the view state over its cases, and the history selection. It contains no
// widget code, so the interesting transitions are testable headlessly.
type Presenter struct {
	cache  *history.Cache
	logger *log.Logger

	mu       sync.Mutex
	result   *record.AnalysisResult
	state    *view.State
	selected string
}

// NewPresenter creates a presenter over a session's history cache.
func NewPresenter(cache *history.Cache, pageSize int, logger *log.Logger) *Presenter {
	return &Presenter{
		cache:  cache,
		logger: logger,
		result: &record.AnalysisResult{Cases: []record.CaseRecord{}},
		state:  view.NewState(pageSize),
	}
}

// SetResult replaces the displayed result with a freshly normalized one.
// View state resets: filters clear, disclosure collapses, page returns to 1.
// Any in-flight history resolution becomes stale and will be discarded.
func (p *Presenter) SetResult(res *record.AnalysisResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.result = res
	p.state.SetCourtFilter("")
	p.state.SetMinCitations(0)
	p.state.CollapseAll()
	p.selected = ""
}

// Result returns the currently displayed result.
func (p *Presenter) Result() *record.AnalysisResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.result
}

// State exposes the view state for mutation by key handlers. The presenter's
// lock does not cover it; all UI mutation happens on the event loop thread.
func (p *Presenter) State() *view.State {
	return p.state
}

// CurrentPage computes the visible slice of the case list.
func (p *Presenter) CurrentPage() (view.Page, error) {
	p.mu.Lock()
	cases := p.result.Cases
	p.mu.Unlock()
	return view.Apply(cases, p.state)
}

// SelectHistory begins resolving a clicked history entry. The commit
// callback runs only if this entry is still the selected one when the
// resolution settles; a stale resolution is logged and discarded so it can
// never overwrite a view that has moved on. commit receives the resolved
// cases, or ErrNotFound / ErrAuthExpired / a transport error.
//
// The resolution goroutine never touches view state: on success, commit must
// marshal onto the event loop thread and install the result there via
// CommitHistory, the same thread every key handler mutates the state on.
func (p *Presenter) SelectHistory(ctx context.Context, entry record.HistoryEntry, commit func([]record.CaseRecord, error)) {
	key := entry.Key()
	p.mu.Lock()
	p.selected = key
	p.mu.Unlock()

	go func() {
		cases, err := p.cache.Resolve(ctx, entry)

		p.mu.Lock()
		stale := p.selected != key
		p.mu.Unlock()

		if stale {
			p.logger.Printf("discarding stale history resolution for %q", entry.Query)
			return
		}
		commit(cases, err)
	}()
}

// CommitHistory installs a resolved history result and resets the page and
// disclosure for it. Must run on the event loop thread. The selection is
// re-checked here because it may have moved on between the resolution
// settling and the queued draw running; a stale commit is refused and the
// view keeps its current result.
func (p *Presenter) CommitHistory(entry record.HistoryEntry, cases []record.CaseRecord) bool {
	p.mu.Lock()
	if p.selected != entry.Key() {
		p.mu.Unlock()
		return false
	}
	p.result = &record.AnalysisResult{
		Cases:        cases,
		TotalResults: len(cases),
	}
	p.mu.Unlock()

	p.state.SetPage(1)
	p.state.CollapseAll()
	return true
}

// SelectedKey reports the history key the view is currently bound to, empty
// when showing a live query result.
func (p *Presenter) SelectedKey() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Package ui is the interactive console for VeritasAI: a query bar, a paged
// case table with expandable detail, a citation verification panel, and the
// session's query history with stored-result replay.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"veritas-console/internal/client"
	"veritas-console/internal/history"
	"veritas-console/internal/normalize"
	"veritas-console/internal/record"
	"veritas-console/internal/view"
)

// Console is the top-level terminal UI.
type Console struct {
	app       *tview.Application
	presenter *Presenter
	api       *client.Client
	logger    *log.Logger
	ctx       context.Context

	layout      *tview.Flex
	queryInput  *tview.InputField
	casesTable  *tview.Table
	detailView  *tview.TextView
	citesView   *tview.TextView
	historyList *tview.List
	statusBar   *tview.TextView

	entries []record.HistoryEntry
}

// NewConsole wires the console against an API client and a session history
// cache.
func NewConsole(ctx context.Context, api *client.Client, cache *history.Cache, pageSize int, logger *log.Logger) *Console {
	c := &Console{
		app:       tview.NewApplication(),
		presenter: NewPresenter(cache, pageSize, logger),
		api:       api,
		logger:    logger,
		ctx:       ctx,
	}
	c.setupWidgets()
	c.setupKeys()
	return c
}

// Run starts the UI event loop and blocks until quit.
func (c *Console) Run() error {
	c.refreshHistory()
	return c.app.SetRoot(c.layout, true).EnableMouse(true).Run()
}

func (c *Console) setupWidgets() {
	c.queryInput = tview.NewInputField().
		SetLabel(" Query: ").
		SetFieldWidth(0)
	c.queryInput.SetBorder(true).SetTitle(" Legal Query (Enter to submit) ")
	c.queryInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			c.submitQuery(c.queryInput.GetText())
		}
	})

	c.casesTable = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	c.casesTable.SetBorder(true).SetTitle(" Cases ")
	c.casesTable.SetSelectedFunc(func(row, col int) {
		c.toggleRow(row)
	})
	c.casesTable.SetSelectionChangedFunc(func(row, col int) {
		c.renderDetail(row)
	})

	c.detailView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	c.detailView.SetBorder(true).SetTitle(" Detail ")

	c.citesView = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	c.citesView.SetBorder(true).SetTitle(" Citation Verification ")

	c.historyList = tview.NewList().ShowSecondaryText(true)
	c.historyList.SetBorder(true).SetTitle(" History (Enter to replay) ")
	c.historyList.SetSelectedFunc(func(index int, _, _ string, _ rune) {
		c.selectHistory(index)
	})

	c.statusBar = tview.NewTextView().SetDynamicColors(true)
	c.statusBar.SetText(" Ready. Keys: s sort | f filter | n/p page | x expand | F5 history | q quit")

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.historyList, 0, 1, false).
		AddItem(c.citesView, 0, 1, false)

	center := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.casesTable, 0, 2, true).
		AddItem(c.detailView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(center, 0, 3, true).
		AddItem(right, 0, 1, false)

	c.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.queryInput, 3, 0, true).
		AddItem(body, 0, 1, false).
		AddItem(c.statusBar, 1, 0, false)
}

func (c *Console) setupKeys() {
	c.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Don't steal keys while typing a query.
		if c.app.GetFocus() == c.queryInput {
			if event.Key() == tcell.KeyTab {
				c.app.SetFocus(c.casesTable)
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyTab:
			c.cycleFocus()
			return nil
		case tcell.KeyF5:
			c.refreshHistory()
			return nil
		}

		switch event.Rune() {
		case 'q':
			c.app.Stop()
			return nil
		case 's':
			c.cycleSort()
			return nil
		case 'f':
			c.showFilterForm()
			return nil
		case 'n':
			c.changePage(1)
			return nil
		case 'p':
			c.changePage(-1)
			return nil
		case 'x':
			row, _ := c.casesTable.GetSelection()
			c.toggleRow(row)
			return nil
		case '/':
			c.app.SetFocus(c.queryInput)
			return nil
		}
		return event
	})
}

func (c *Console) cycleFocus() {
	switch c.app.GetFocus() {
	case c.casesTable:
		c.app.SetFocus(c.historyList)
	case c.historyList:
		c.app.SetFocus(c.queryInput)
	default:
		c.app.SetFocus(c.casesTable)
	}
}

// submitQuery runs a query through the agent pipeline off the UI thread and
// commits the normalized result.
func (c *Console) submitQuery(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	c.setStatus("Running agents for: " + query)

	go func() {
		raw, err := c.api.SubmitQuery(c.ctx, query)
		c.app.QueueUpdateDraw(func() {
			if err != nil {
				c.reportError(err)
				return
			}
			c.presenter.SetResult(normalize.Normalize(raw))
			c.renderResult()
			c.setStatus(fmt.Sprintf("Query complete: %d cases", c.presenter.Result().TotalResults))
		})
	}()
}

// selectHistory replays a clicked history entry from the stored-result
// cache. The presenter guards against a stale resolution landing after the
// selection has moved on.
func (c *Console) selectHistory(index int) {
	if index < 0 || index >= len(c.entries) {
		return
	}
	entry := c.entries[index]
	c.setStatus("Loading stored result for: " + entry.Query)

	c.presenter.SelectHistory(c.ctx, entry, func(cases []record.CaseRecord, err error) {
		c.app.QueueUpdateDraw(func() {
			switch {
			case err == nil:
				if !c.presenter.CommitHistory(entry, cases) {
					return
				}
				c.renderResult()
				c.setStatus(fmt.Sprintf("Replayed %q: %d cases", entry.Query, len(cases)))
			case errors.Is(err, history.ErrNotFound):
				c.setStatus(fmt.Sprintf("No previous result stored for %q", entry.Query))
			default:
				c.reportError(err)
			}
		})
	})
}

func (c *Console) refreshHistory() {
	go func() {
		entries, err := c.api.UserQueries(c.ctx)
		c.app.QueueUpdateDraw(func() {
			if err != nil {
				c.reportError(err)
				return
			}
			c.entries = entries
			c.historyList.Clear()
			for _, e := range entries {
				c.historyList.AddItem(e.Query, e.Timestamp, 0, nil)
			}
			c.setStatus(fmt.Sprintf("Loaded %d history entries", len(entries)))
		})
	}()
}

func (c *Console) cycleSort() {
	order := []view.SortKey{view.SortNewest, view.SortOldest, view.SortMostCited, view.SortLeastCited}
	current := c.presenter.State().Sort
	next := order[0]
	for i, key := range order {
		if key == current {
			next = order[(i+1)%len(order)]
			break
		}
	}
	c.presenter.State().SetSort(next)
	c.renderResult()
	c.setStatus("Sort: " + string(next))
}

func (c *Console) changePage(delta int) {
	state := c.presenter.State()
	state.SetPage(state.Page + delta)
	c.renderResult()
}

func (c *Console) toggleRow(row int) {
	page, err := c.presenter.CurrentPage()
	if err != nil || row < 1 || row > len(page.Cases) {
		return
	}
	c.presenter.State().ToggleExpanded(page.Cases[row-1].ID)
	c.renderDetail(row)
}

// showFilterForm opens a modal form over the layout for the court substring
// and minimum citation count filters.
func (c *Console) showFilterForm() {
	state := c.presenter.State()
	form := tview.NewForm().
		AddInputField("Court contains", state.CourtFilter, 30, nil, nil).
		AddInputField("Min citations", strconv.Itoa(state.MinCitations), 10, nil, nil)
	form.SetBorder(true).SetTitle(" Case Filter ")

	form.AddButton("Apply", func() {
		court := form.GetFormItem(0).(*tview.InputField).GetText()
		minCites, _ := strconv.Atoi(form.GetFormItem(1).(*tview.InputField).GetText())
		state.SetCourtFilter(court)
		state.SetMinCitations(minCites)
		c.app.SetRoot(c.layout, true)
		c.renderResult()
	})
	form.AddButton("Clear", func() {
		state.SetCourtFilter("")
		state.SetMinCitations(0)
		c.app.SetRoot(c.layout, true)
		c.renderResult()
	})
	form.AddButton("Cancel", func() {
		c.app.SetRoot(c.layout, true)
	})

	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(form, 11, 0, true).
			AddItem(nil, 0, 1, false), 50, 0, true).
		AddItem(nil, 0, 1, false)
	c.app.SetRoot(modal, true)
}

// renderResult redraws the case table and citation panel from presenter
// state.
func (c *Console) renderResult() {
	page, err := c.presenter.CurrentPage()
	if err != nil {
		c.reportError(err)
		return
	}

	c.casesTable.Clear()
	headers := []string{"Title", "Court", "Date", "Decision", "Cited"}
	for col, h := range headers {
		c.casesTable.SetCell(0, col, tview.NewTableCell("[yellow]"+h).
			SetSelectable(false))
	}
	for i, cs := range page.Cases {
		marker := ""
		if c.presenter.State().IsExpanded(cs.ID) {
			marker = "▼ "
		}
		c.casesTable.SetCell(i+1, 0, tview.NewTableCell(marker+cs.Title))
		c.casesTable.SetCell(i+1, 1, tview.NewTableCell(cs.Court))
		c.casesTable.SetCell(i+1, 2, tview.NewTableCell(cs.DecisionDate))
		c.casesTable.SetCell(i+1, 3, tview.NewTableCell(string(cs.Decision)))
		c.casesTable.SetCell(i+1, 4, tview.NewTableCell(strconv.Itoa(cs.CitationCount)))
	}
	c.casesTable.SetTitle(fmt.Sprintf(" Cases (%d) — page %d/%d ",
		page.TotalCount, page.Page, page.TotalPages))
	if c.casesTable.GetRowCount() > 1 {
		c.casesTable.Select(1, 0)
	}
	c.renderDetail(1)
	c.renderCitations()
}

// renderDetail shows the disclosure pane for the selected row: collapsed
// rows get a one-line hint, expanded rows the full record.
func (c *Console) renderDetail(row int) {
	page, err := c.presenter.CurrentPage()
	if err != nil || row < 1 || row > len(page.Cases) {
		c.detailView.SetText("")
		return
	}
	cs := page.Cases[row-1]

	if !c.presenter.State().IsExpanded(cs.ID) {
		c.detailView.SetText("[gray]Press x or Enter to expand " + cs.Title)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]%s[-]\n%s — %s — %s\n\n", cs.Title, cs.Court, cs.DecisionDate, cs.Decision)
	if cs.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", cs.Summary)
	}
	if len(cs.Citations) > 0 {
		b.WriteString("[yellow]Citations[-]\n")
		for _, cit := range cs.Citations {
			fmt.Fprintf(&b, "  • %s\n", cit)
		}
		b.WriteString("\n")
	}
	if len(cs.RelatedPrecedents) > 0 {
		b.WriteString("[yellow]Related precedents[-]\n")
		for _, p := range cs.RelatedPrecedents {
			fmt.Fprintf(&b, "  • %s (%s, %s)\n", p.Title, p.Court, p.Date)
		}
	}
	c.detailView.SetText(b.String())
}

// renderCitations shows structured verdicts when normalization recovered
// them, or the raw verification text as an opaque fallback.
func (c *Console) renderCitations() {
	res := c.presenter.Result()

	var b strings.Builder
	if res.Verification != nil {
		fmt.Fprintf(&b, "Valid %d / Invalid %d / Review %d\n\n",
			res.Verification.Valid, res.Verification.Invalid, res.Verification.NeedsReview)
	}
	switch {
	case res.CitationAnalyses != nil:
		for _, a := range res.CitationAnalyses {
			fmt.Fprintf(&b, "%s %s\n", statusTag(a.Status), a.CitationText)
			if a.Issues != "" {
				fmt.Fprintf(&b, "    issues: %s\n", a.Issues)
			}
			if a.Recommendations != "" {
				fmt.Fprintf(&b, "    fix: %s\n", a.Recommendations)
			}
		}
	case res.RawVerification != "":
		b.WriteString(res.RawVerification)
	default:
		b.WriteString("[gray]No citation verification data")
	}
	c.citesView.SetText(b.String())
}

func statusTag(s record.CitationStatus) string {
	switch s {
	case record.CitationValid:
		return "[green]✔[-]"
	case record.CitationInvalid:
		return "[red]✘[-]"
	default:
		return "[yellow]?[-]"
	}
}

// reportError routes errors per the taxonomy: auth expiry prompts re-login,
// everything else is a retryable status message.
func (c *Console) reportError(err error) {
	if errors.Is(err, client.ErrAuthExpired) {
		c.setStatus("[red]Session expired — run 'veritas-console' with a fresh --token to continue")
		return
	}
	c.setStatus("[red]Error: " + err.Error() + " (retry when ready)")
}

func (c *Console) setStatus(msg string) {
	c.statusBar.SetText(" " + msg)
	c.logger.Print(msg)
}

package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// SearchOutcome distinguishes a hit from a clean exhaustion of every page.
// Exhaustion is data, not an error; the caller decides whether it is fatal.
type SearchOutcome int

const (
	SearchFound SearchOutcome = iota
	SearchExhausted
)

// RowMatch pins a located row to the page it was found on. Index is the
// zero-based position within the page's full tr list, so it addresses the
// row for a follow-up action on the same page.
type RowMatch struct {
	Page  int
	Index int
	Text  string
}

// SearchResult is what a paginated row scan returns.
type SearchResult struct {
	Outcome SearchOutcome
	Match   RowMatch
	Pages   int // pages visited
}

// pager is the page-level surface the locator scans through. The real
// implementation drives the browser; tests substitute a canned one.
type pager interface {
	WaitList(ctx context.Context) error
	RowTexts(ctx context.Context) ([]string, error)
	AdvancePage(ctx context.Context) (bool, error)
}

const (
	tableWait         = 10 * time.Second
	pageAdvanceSettle = 2 * time.Second
)

// tablePager drives the portal's listing tables.
type tablePager struct{}

func (tablePager) WaitList(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, tableWait)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitReady("table", chromedp.ByQuery)); err != nil {
		return InteractionTimeoutError{Op: "wait", Selector: "table", Err: err}
	}
	return nil
}

func (tablePager) RowTexts(ctx context.Context) ([]string, error) {
	var texts []string
	js := `Array.from(document.querySelectorAll('table tr')).map(r => r.innerText)`
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &texts, silentEval)); err != nil {
		return nil, err
	}
	return texts, nil
}

// nextTmpl clicks the first displayed paging control whose text contains one
// of the portal's "next" markers, reporting whether one existed.
const nextTmpl = `(function() {
	const markers = ['次へ', '＞'];
	const candidates = document.querySelectorAll('a, button');
	for (const el of candidates) {
		if (el.offsetParent === null) continue;
		const text = (el.textContent || '').trim();
		if (markers.some(m => text.includes(m))) {
			el.click();
			return true;
		}
	}
	return false;
})()`

func (tablePager) AdvancePage(ctx context.Context) (bool, error) {
	var advanced bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(nextTmpl, &advanced, silentEval)); err != nil {
		return false, err
	}
	if advanced {
		if err := chromedp.Run(ctx, chromedp.Sleep(pageAdvanceSettle)); err != nil {
			return false, err
		}
	}
	return advanced, nil
}

// RowLocator scans a paginated table for the first row matching a predicate,
// paging forward until a hit, exhaustion, or the page ceiling.
type RowLocator struct {
	// MaxPages caps how many pages the scan will visit.
	MaxPages int

	pg  pager
	log *slog.Logger
}

func NewRowLocator(log *slog.Logger, maxPages int) *RowLocator {
	return &RowLocator{MaxPages: maxPages, pg: tablePager{}, log: log}
}

// Locate walks pages in order and returns the first row whose full text
// satisfies pred. Matching is first-wins within a page.
func (l *RowLocator) Locate(ctx context.Context, pred func(string) bool) (SearchResult, error) {
	for page := 1; ; page++ {
		if page > l.MaxPages {
			return SearchResult{Pages: l.MaxPages}, PaginationLimitError{Limit: l.MaxPages}
		}
		if err := l.pg.WaitList(ctx); err != nil {
			return SearchResult{Pages: page}, err
		}
		texts, err := l.pg.RowTexts(ctx)
		if err != nil {
			return SearchResult{Pages: page}, err
		}
		for i, text := range texts {
			if pred(text) {
				l.log.Info("row located", "page", page, "index", i)
				return SearchResult{
					Outcome: SearchFound,
					Match:   RowMatch{Page: page, Index: i, Text: text},
					Pages:   page,
				}, nil
			}
		}
		advanced, err := l.pg.AdvancePage(ctx)
		if err != nil {
			return SearchResult{Pages: page}, err
		}
		if !advanced {
			l.log.Info("row search exhausted", "pages", page)
			return SearchResult{Outcome: SearchExhausted, Pages: page}, nil
		}
	}
}

// countTmpl counts XPath matches without materializing nodes.
const countTmpl = `document.evaluate('count(%s)', document, null, XPathResult.NUMBER_TYPE, null).numberValue`

// TriggerRowAction clicks the control inside a located row selected by an
// XPath predicate over the row's descendants, e.g. a text or class match on
// the row's buttons. The match must be on the currently displayed page.
func (in *Interactor) TriggerRowAction(ctx context.Context, match RowMatch, controlPredicate string) error {
	path := fmt.Sprintf("(//table//tr)[%d]//*[%s]", match.Index+1, controlPredicate)

	var count float64
	js := fmt.Sprintf(countTmpl, jsEscapeSingle(path))
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &count, silentEval)); err != nil {
		return err
	}
	if count < 1 {
		in.evidence.Capture(ctx, labelClickFailed)
		return ActionControlNotFoundError{Row: match.Text}
	}
	return in.Click(ctx, Path(path))
}

// jsEscapeSingle makes an XPath safe for embedding in a single-quoted JS
// string literal.
func jsEscapeSingle(s string) string {
	out := make([]byte, 0, len(s)+2)
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

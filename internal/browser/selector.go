package browser

import "github.com/chromedp/chromedp"

// SelectorKind distinguishes the two addressing modes the portal markup
// forces on us. Callers pick the mode explicitly; there is no string sniffing.
type SelectorKind int

const (
	// KindQuery addresses elements by CSS selector.
	KindQuery SelectorKind = iota
	// KindPath addresses elements by XPath, for text- and attribute-predicate
	// matching the CSS form cannot express.
	KindPath
)

// Selector is a tagged element address.
type Selector struct {
	kind SelectorKind
	expr string
}

func Query(expr string) Selector { return Selector{kind: KindQuery, expr: expr} }

func Path(expr string) Selector { return Selector{kind: KindPath, expr: expr} }

func (s Selector) Kind() SelectorKind { return s.kind }

func (s Selector) IsPath() bool { return s.kind == KindPath }

func (s Selector) String() string { return s.expr }

// by maps the selector to the matching chromedp query mode.
func (s Selector) by() chromedp.QueryOption {
	if s.kind == KindPath {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

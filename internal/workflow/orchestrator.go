package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/example/tma-autoreserve/internal/browser"
	"github.com/example/tma-autoreserve/internal/config"
	"github.com/example/tma-autoreserve/internal/domain/reservation"
)

// interactor is the slice of the browser interactor the phases drive. Tests
// substitute a scripted one, the same way the row locator's pager is faked.
type interactor interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, sel browser.Selector) error
	TryClick(ctx context.Context, sel browser.Selector, timeout time.Duration) error
	SetValue(ctx context.Context, sel browser.Selector, value string) error
	SelectValue(ctx context.Context, sel browser.Selector, value, labelFallback string) error
	WaitPresent(ctx context.Context, sel browser.Selector, timeout time.Duration) error
	WaitVisible(ctx context.Context, sel browser.Selector, timeout time.Duration) error
	EvalBool(ctx context.Context, js string) (bool, error)
	TriggerRowAction(ctx context.Context, match browser.RowMatch, controlPredicate string) error
	ResolvePopupIfPresent(ctx context.Context) browser.PopupOutcome
}

type rowLocator interface {
	Locate(ctx context.Context, pred func(string) bool) (browser.SearchResult, error)
}

type recorder interface {
	Capture(ctx context.Context, label string) browser.Record
}

// Orchestrator runs the full reservation-change sequence: sign in, cancel
// the existing reservation for the plate, then book the new slot. The two
// phases share one browser session and always run in that order, since the
// portal refuses an overlapping booking while the old one stands.
type Orchestrator struct {
	cfg      config.Config
	log      *slog.Logger
	out      io.Writer
	inter    interactor
	evidence recorder
	locator  rowLocator

	confirmSettle time.Duration // after the cancel confirmation click
	submitSettle  time.Duration // after the booking form submit
}

func New(cfg config.Config, log *slog.Logger, out io.Writer, inter *browser.Interactor, evidence *browser.Recorder, locator *browser.RowLocator) *Orchestrator {
	return &Orchestrator{
		cfg:           cfg,
		log:           log,
		out:           out,
		inter:         inter,
		evidence:      evidence,
		locator:       locator,
		confirmSettle: 2 * time.Second,
		submitSettle:  3 * time.Second,
	}
}

// Run executes login, cancellation, and booking against an already running
// browser. Any error has already produced its step-level evidence; the
// deferred capture adds a final snapshot of wherever the page ended up.
func (o *Orchestrator) Run(ctx context.Context, req reservation.Request) (err error) {
	defer func() {
		if err != nil {
			o.evidence.Capture(ctx, "FATAL_ERROR")
		}
	}()

	if err := o.login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := o.cancelExisting(ctx, req.Plate); err != nil {
		return fmt.Errorf("cancel phase: %w", err)
	}
	if err := o.bookNew(ctx, req); err != nil {
		return fmt.Errorf("booking phase: %w", err)
	}
	return nil
}

// progress writes the user-facing narration line. Structured logs carry the
// detail; this stream is for the person watching the run.
func (o *Orchestrator) progress(format string, args ...any) {
	fmt.Fprintf(o.out, format+"\n", args...)
}

// settle pauses for d, returning early if the run is cancelled.
func settle(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func textContains(needle string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, needle) }
}

// xpathQuote renders s as an XPath string literal. XPath 1.0 has no escape
// syntax, so a value holding both quote kinds needs the concat() form.
func xpathQuote(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

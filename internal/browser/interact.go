package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Evidence labels for the two interaction failure kinds.
const (
	labelClickFailed = "ERROR_ClickFailed"
	labelInputFailed = "ERROR_InputFailed"
)

var errNotReady = errors.New("element not in required state")

// Interactor is the strict interaction primitive: every operation waits,
// bounded, for the target to reach the required readiness state, and a wait
// that runs out is fatal to the calling step. The bounded wait is the only
// retry mechanism in the system.
type Interactor struct {
	log      *slog.Logger
	evidence *Recorder

	timeout time.Duration // default per-interaction bound
	settle  time.Duration // post-scroll settle before clicking
	poll    time.Duration // readiness poll interval
}

func NewInteractor(log *slog.Logger, evidence *Recorder) *Interactor {
	return &Interactor{
		log:      log,
		evidence: evidence,
		timeout:  30 * time.Second,
		settle:   500 * time.Millisecond,
		poll:     500 * time.Millisecond,
	}
}

// Navigate loads url and returns once the navigation commits.
func (in *Interactor) Navigate(ctx context.Context, url string) error {
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		in.log.Warn("navigate failed", "url", url, "error", err)
		return err
	}
	in.log.Info("navigate", "url", url)
	return nil
}

// Click waits (default bound) for the target to become clickable, scrolls it
// to viewport center, lets any transition settle, then clicks.
func (in *Interactor) Click(ctx context.Context, sel Selector) error {
	return in.ClickWithin(ctx, sel, in.timeout)
}

func (in *Interactor) ClickWithin(ctx context.Context, sel Selector, timeout time.Duration) error {
	if err := in.doClick(ctx, sel, timeout); err != nil {
		in.log.Warn("click failed", "selector", sel.String(), "error", err)
		in.evidence.Capture(ctx, labelClickFailed)
		return InteractionTimeoutError{Op: "click", Selector: sel.String(), Err: err}
	}
	in.log.Info("click", "selector", sel.String())
	return nil
}

// TryClick is the best-effort variant used for non-fatal confirmations: same
// wait/scroll/settle/click sequence, but no evidence capture and no error
// wrapping. The caller decides what a failure means.
func (in *Interactor) TryClick(ctx context.Context, sel Selector, timeout time.Duration) error {
	return in.doClick(ctx, sel, timeout)
}

func (in *Interactor) doClick(ctx context.Context, sel Selector, timeout time.Duration) error {
	if err := in.waitState(ctx, sel, timeout, stateClickable); err != nil {
		return err
	}
	return chromedp.Run(ctx,
		chromedp.ScrollIntoView(sel.expr, sel.by()),
		chromedp.Sleep(in.settle),
		chromedp.Click(sel.expr, sel.by()),
	)
}

// SetValue waits for the target to become visible, clears it, and types the
// new value.
func (in *Interactor) SetValue(ctx context.Context, sel Selector, value string) error {
	if err := in.waitState(ctx, sel, in.timeout, stateVisible); err != nil {
		in.log.Warn("input failed", "selector", sel.String(), "value", value, "error", err)
		in.evidence.Capture(ctx, labelInputFailed)
		return InteractionTimeoutError{Op: "input", Selector: sel.String(), Err: err}
	}
	err := chromedp.Run(ctx,
		chromedp.Clear(sel.expr, sel.by()),
		chromedp.SendKeys(sel.expr, value, sel.by()),
	)
	if err != nil {
		in.log.Warn("input failed", "selector", sel.String(), "value", value, "error", err)
		in.evidence.Capture(ctx, labelInputFailed)
		return InteractionTimeoutError{Op: "input", Selector: sel.String(), Err: err}
	}
	in.log.Info("input", "selector", sel.String(), "value", value)
	return nil
}

const selectTmpl = `(function(expr, byPath, value, label) {
	let el = null;
	if (byPath) {
		el = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	} else {
		el = document.querySelector(expr);
	}
	if (!el || el.tagName.toLowerCase() !== 'select') return 'missing';
	for (const opt of el.options) {
		if (opt.value === value) {
			el.value = opt.value;
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return 'value';
		}
	}
	if (label !== '') {
		for (const opt of el.options) {
			if (opt.textContent.trim() === label) {
				el.value = opt.value;
				el.dispatchEvent(new Event('change', { bubbles: true }));
				return 'label';
			}
		}
	}
	return 'none';
})(%s, %t, %s, %s)`

// SelectValue waits for a select control to become visible, then selects the
// option with the given value, falling back to matching the display label
// when labelFallback is non-empty. The value is written in the page so the
// change event fires the portal's cascade handlers.
func (in *Interactor) SelectValue(ctx context.Context, sel Selector, value, labelFallback string) error {
	if err := in.waitState(ctx, sel, in.timeout, stateVisible); err != nil {
		in.log.Warn("select failed", "selector", sel.String(), "value", value, "error", err)
		in.evidence.Capture(ctx, labelInputFailed)
		return InteractionTimeoutError{Op: "select", Selector: sel.String(), Err: err}
	}
	js := fmt.Sprintf(selectTmpl, JSQuote(sel.expr), sel.IsPath(), JSQuote(value), JSQuote(labelFallback))
	var how string
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &how, silentEval)); err != nil {
		in.log.Warn("select failed", "selector", sel.String(), "value", value, "error", err)
		in.evidence.Capture(ctx, labelInputFailed)
		return InteractionTimeoutError{Op: "select", Selector: sel.String(), Err: err}
	}
	switch how {
	case "value", "label":
		in.log.Info("select", "selector", sel.String(), "value", value, "matched_by", how)
		return nil
	default:
		in.log.Warn("select failed", "selector", sel.String(), "value", value, "matched_by", how)
		in.evidence.Capture(ctx, labelInputFailed)
		return OptionNotFoundError{Selector: sel.String(), Value: value}
	}
}

// WaitPresent waits, bounded, for the target to exist in the document. It is
// a readiness probe, not an interaction: no evidence is captured here.
func (in *Interactor) WaitPresent(ctx context.Context, sel Selector, timeout time.Duration) error {
	if err := in.waitState(ctx, sel, timeout, statePresent); err != nil {
		return InteractionTimeoutError{Op: "wait", Selector: sel.String(), Err: err}
	}
	return nil
}

// WaitVisible waits, bounded, for the target to be rendered visible.
func (in *Interactor) WaitVisible(ctx context.Context, sel Selector, timeout time.Duration) error {
	if err := in.waitState(ctx, sel, timeout, stateVisible); err != nil {
		return InteractionTimeoutError{Op: "wait", Selector: sel.String(), Err: err}
	}
	return nil
}

type readyState int

const (
	statePresent readyState = iota
	stateVisible
	stateClickable
)

const stateTmpl = `(function(expr, byPath, state) {
	let el = null;
	if (byPath) {
		el = document.evaluate(expr, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	} else {
		el = document.querySelector(expr);
	}
	if (!el) return false;
	if (state === 0) return true;
	const rect = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	if (rect.width <= 0 || rect.height <= 0) return false;
	if (style.display === 'none' || style.visibility === 'hidden' || style.opacity === '0') return false;
	if (state === 2 && el.disabled) return false;
	return true;
})(%s, %t, %d)`

// waitState polls the readiness predicate at a fixed interval until it holds
// or the bound runs out.
func (in *Interactor) waitState(ctx context.Context, sel Selector, timeout time.Duration, state readyState) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := uint(timeout / in.poll)
	if attempts < 1 {
		attempts = 1
	}
	js := fmt.Sprintf(stateTmpl, JSQuote(sel.expr), sel.IsPath(), state)

	return retry.Do(
		func() error {
			var ready bool
			if err := chromedp.Run(waitCtx, chromedp.Evaluate(js, &ready, silentEval)); err != nil {
				return err
			}
			if !ready {
				return errNotReady
			}
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(attempts),
		retry.Delay(in.poll),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

// EvalBool runs a page script that yields a boolean.
func (in *Interactor) EvalBool(ctx context.Context, js string) (bool, error) {
	var out bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(js, &out, silentEval)); err != nil {
		return false, err
	}
	return out, nil
}

// silentEval keeps page exceptions raised by probe scripts out of the console.
func silentEval(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithReturnByValue(true).WithSilent(true)
}

// JSQuote encodes a Go string as a JS string literal.
func JSQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

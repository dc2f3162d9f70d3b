package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// PopupOutcome says what the resolver found. Absence is an outcome, not an
// error: the portal shows its confirmation dialog only on some paths.
type PopupOutcome int

const (
	PopupAbsent PopupOutcome = iota
	PopupResolved
	// PopupStuck means the dialog was detected but the dismissal click
	// failed, so it may still be covering the page.
	PopupStuck
)

func (o PopupOutcome) String() string {
	switch o {
	case PopupResolved:
		return "resolved"
	case PopupStuck:
		return "stuck"
	default:
		return "absent"
	}
}

// Confirm button of the portal's modal message dialog.
const popupConfirmSelector = "#posupMessageConfirmOk"

const popupWait = 5 * time.Second

// ResolvePopupIfPresent waits briefly for the portal's confirmation dialog
// and dismisses it when it shows up. The click goes through the page instead
// of the input layer because the dialog overlay intercepts synthetic mouse
// events.
func (in *Interactor) ResolvePopupIfPresent(ctx context.Context) PopupOutcome {
	sel := Query(popupConfirmSelector)
	if err := in.waitState(ctx, sel, popupWait, stateClickable); err != nil {
		return PopupAbsent
	}
	js := "document.querySelector(" + JSQuote(popupConfirmSelector) + ").click()"
	if err := chromedp.Run(ctx,
		chromedp.Evaluate(js, nil, silentEval),
		chromedp.Sleep(1*time.Second),
	); err != nil {
		in.log.Warn("popup dismissal failed", "selector", popupConfirmSelector, "error", err)
		return PopupStuck
	}
	in.log.Info("popup dismissed", "selector", popupConfirmSelector)
	return PopupResolved
}

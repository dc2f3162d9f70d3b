package workflow

import (
	"context"
	"time"

	"github.com/example/tma-autoreserve/internal/browser"
)

const cancelConfirmWait = 10 * time.Second

// cancelExisting removes the current reservation for the plate, if one
// exists. Finding no matching row is the normal case on a first booking and
// ends the phase successfully.
func (o *Orchestrator) cancelExisting(ctx context.Context, plate string) error {
	o.progress("Checking reservation history for %s", plate)
	if err := o.inter.Navigate(ctx, o.cfg.HistoryURL); err != nil {
		return err
	}

	res, err := o.locator.Locate(ctx, textContains(plate))
	if err != nil {
		return err
	}
	if res.Outcome == browser.SearchExhausted {
		o.progress("No existing reservation for %s, nothing to cancel", plate)
		o.evidence.Capture(ctx, "INFO_CancelNotFound")
		return nil
	}

	o.progress("Cancelling existing reservation for %s", plate)
	pred := `contains(text(), '取消') or contains(@class, 'submit-btn')`
	if err := o.inter.TriggerRowAction(ctx, res.Match, pred); err != nil {
		return err
	}
	o.confirmCancel(ctx)
	o.progress("Cancellation submitted for %s", plate)
	return nil
}

// confirmCancel acknowledges the portal's "really cancel?" dialog. The
// dialog wording varies between portal releases and sometimes the dialog is
// skipped entirely, so a miss records evidence and moves on rather than
// failing the run.
func (o *Orchestrator) confirmCancel(ctx context.Context) {
	sel := browser.Path(`//button[contains(text(), 'OK') or contains(text(), 'はい')]`)
	if err := o.inter.TryClick(ctx, sel, cancelConfirmWait); err != nil {
		o.evidence.Capture(ctx, "ERROR_CancelDialog")
		o.log.Warn("cancel confirmation dialog not acknowledged", "error", err)
		return
	}
	// Let the portal process the cancellation before the next navigation.
	settle(ctx, o.confirmSettle)
}

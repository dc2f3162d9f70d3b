package workflow

import (
	"context"
	"time"

	"github.com/example/tma-autoreserve/internal/browser"
)

const loginReadyWait = 10 * time.Second

// login signs in to the portal with the configured member card number and
// password. The card number is entered as its two dash-separated halves,
// matching the split input the form presents.
func (o *Orchestrator) login(ctx context.Context) error {
	o.progress("Opening login page %s", o.cfg.LoginURL)
	if err := o.inter.Navigate(ctx, o.cfg.LoginURL); err != nil {
		return err
	}

	first, second := o.cfg.CardParts()
	if err := o.inter.SetValue(ctx, browser.Query("#cardNo1"), first); err != nil {
		return err
	}
	if err := o.inter.SetValue(ctx, browser.Query("#cardNo2"), second); err != nil {
		return err
	}
	if err := o.inter.SetValue(ctx, browser.Query("#password"), o.cfg.Password); err != nil {
		return err
	}
	if err := o.inter.Click(ctx, browser.Query(".btn-primary")); err != nil {
		return err
	}

	// The landing page renders a main element once the session is live. Some
	// portal variants skip it, so a miss here is logged and tolerated; the
	// next step's own waits decide whether the session actually works.
	if err := o.inter.WaitPresent(ctx, browser.Query("main"), loginReadyWait); err != nil {
		o.log.Warn("post-login landmark not seen, continuing", "error", err)
	}
	o.progress("Logged in as card %s-%s", first, second)
	return nil
}

package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tma-autoreserve/internal/browser"
	"github.com/example/tma-autoreserve/internal/domain/reservation"
)

const (
	vehicleWait   = 10 * time.Second
	formReadyWait = 10 * time.Second
)

// Form controls on the reservation input page. The portal is inconsistent
// about name vs id casing across its screens, so each selector accepts the
// variants seen in the wild.
var (
	selDate     = browser.Path(`//select[contains(@name, 'Date') or contains(@id, 'Date') or contains(@name, 'date')]`)
	selHour     = browser.Path(`//select[contains(@name, 'Hour') or contains(@id, 'Hour') or contains(@name, 'hour')]`)
	selMinute   = browser.Path(`//select[contains(@name, 'Minute') or contains(@id, 'Minute') or contains(@name, 'minute')]`)
	selDuration = browser.Path(`//select[contains(@name, 'Time') or contains(@id, 'Time') or contains(@name, 'duration') or contains(@name, 'useTime')]`)
	selSubmit   = browser.Path(`//button[contains(text(), '確認') or contains(text(), '確定') or contains(text(), '登録')]`)
)

// bookNew creates the reservation: locate the station in the station list,
// open it, find the vehicle by plate, open the reservation form, and submit
// it with the time the request carries.
func (o *Orchestrator) bookNew(ctx context.Context, req reservation.Request) error {
	o.progress("Opening station list %s", o.cfg.StationURL)
	if err := o.inter.Navigate(ctx, o.cfg.StationURL); err != nil {
		return err
	}

	res, err := o.locator.Locate(ctx, textContains(req.Station))
	if err != nil {
		return err
	}
	if res.Outcome == browser.SearchExhausted {
		o.evidence.Capture(ctx, "ERROR_StationNotFound")
		return SearchExhaustedError{What: "station " + req.Station}
	}
	o.progress("Station %s found on page %d", req.Station, res.Match.Page)
	pred := fmt.Sprintf("contains(text(), %s)", xpathQuote(req.Station))
	if err := o.inter.TriggerRowAction(ctx, res.Match, pred); err != nil {
		return err
	}

	if err := o.openReservationForm(ctx, req.Plate); err != nil {
		return err
	}
	if err := o.fillForm(ctx, req); err != nil {
		o.evidence.Capture(ctx, "ERROR_ReservationInput")
		return err
	}

	o.inter.ResolvePopupIfPresent(ctx)
	o.evidence.Capture(ctx, "SUCCESS_ReservationCompleted")
	o.progress("Reservation completed: %s at %s, %s", req.Plate, req.Station, req.ReservationTime)
	return nil
}

// reserveTagTmpl finds the element whose text carries the plate, walks up a
// few ancestors to the vehicle's card, and tags that card's reserve control
// so it can be clicked through a stable selector. The walk is capped because
// past three levels the container holds other vehicles too.
const reserveTagTmpl = `(function(plate) {
	const walker = document.createTreeWalker(document.body, NodeFilter.SHOW_TEXT);
	let holder = null;
	while (walker.nextNode()) {
		if (walker.currentNode.textContent.includes(plate)) {
			holder = walker.currentNode.parentElement;
			break;
		}
	}
	if (!holder) return false;
	for (let depth = 0; holder && depth <= 3; depth++, holder = holder.parentElement) {
		const controls = holder.querySelectorAll('a, button, input[type=button], input[type=submit]');
		for (const el of controls) {
			const text = (el.textContent || el.value || '').trim();
			if (text.includes('予約')) {
				el.setAttribute('data-tmaresv-action', 'reserve');
				return true;
			}
		}
	}
	return false;
})(%s)`

// openReservationForm is the second search tier: the plate is located inside
// the station's vehicle listing and its reserve control is clicked.
func (o *Orchestrator) openReservationForm(ctx context.Context, plate string) error {
	platePath := browser.Path(fmt.Sprintf("//*[contains(text(), %s)]", xpathQuote(plate)))
	if err := o.inter.WaitVisible(ctx, platePath, vehicleWait); err != nil {
		o.evidence.Capture(ctx, "ERROR_ReserveTargetNotFound")
		return SearchExhaustedError{What: "vehicle " + plate}
	}

	js := fmt.Sprintf(reserveTagTmpl, browser.JSQuote(plate))
	tagged, err := o.inter.EvalBool(ctx, js)
	if err != nil {
		return err
	}
	if !tagged {
		o.evidence.Capture(ctx, "ERROR_ReserveTargetNotFound")
		return browser.ActionControlNotFoundError{Row: plate}
	}
	o.progress("Vehicle %s found, opening reservation form", plate)
	return o.inter.Click(ctx, browser.Query(`[data-tmaresv-action="reserve"]`))
}

// fillForm enters the reservation time and submits. The selects cascade on
// the portal side: picking a date repopulates the hour options, and so on,
// which is why each value is set through a real change event in page order.
// The duration is always forced to the shortest slot; the portal's 30 minute
// default is never accepted.
func (o *Orchestrator) fillForm(ctx context.Context, req reservation.Request) error {
	parts, err := req.TimeParts()
	if err != nil {
		return err
	}

	if err := o.inter.WaitPresent(ctx, selDate, formReadyWait); err != nil {
		return err
	}
	if err := o.inter.SelectValue(ctx, selDate, parts.Date, ""); err != nil {
		return err
	}
	if err := o.inter.SelectValue(ctx, selHour, parts.Hour, ""); err != nil {
		return err
	}
	if err := o.inter.SelectValue(ctx, selMinute, parts.Minute, ""); err != nil {
		return err
	}
	if err := o.inter.SelectValue(ctx, selDuration, reservation.DurationOverride, reservation.DurationOverrideLabel); err != nil {
		return err
	}
	if err := o.inter.Click(ctx, selSubmit); err != nil {
		return err
	}
	// The portal redraws through a couple of intermediate states after
	// submit; give it room before probing for the result dialog.
	settle(ctx, o.submitSettle)
	return nil
}

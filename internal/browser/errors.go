package browser

import "fmt"

// InteractionTimeoutError reports that an element never reached the readiness
// state an interaction required within its bounded wait. Always fatal to the
// calling workflow step.
type InteractionTimeoutError struct {
	Op       string
	Selector string
	Err      error
}

func (e InteractionTimeoutError) Error() string {
	return fmt.Sprintf("%s timed out: %s", e.Op, e.Selector)
}

func (e InteractionTimeoutError) Unwrap() error { return e.Err }

// ActionControlNotFoundError reports a located row (or block) that lacks the
// expected embedded action control.
type ActionControlNotFoundError struct {
	Row string
}

func (e ActionControlNotFoundError) Error() string {
	return fmt.Sprintf("action control not found in row %q", e.Row)
}

// OptionNotFoundError reports a select control that offers neither the wanted
// value nor its display-label fallback.
type OptionNotFoundError struct {
	Selector string
	Value    string
}

func (e OptionNotFoundError) Error() string {
	return fmt.Sprintf("option %q not available in %s", e.Value, e.Selector)
}

// PaginationLimitError reports that the row scan gave up after the configured
// page ceiling. The portal is expected to run out of "next" controls long
// before this; hitting the ceiling means the site is misbehaving.
type PaginationLimitError struct {
	Limit int
}

func (e PaginationLimitError) Error() string {
	return fmt.Sprintf("row search exceeded %d pages", e.Limit)
}

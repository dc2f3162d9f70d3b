package workflow

import "fmt"

// SearchExhaustedError reports that a booking-phase search ran through every
// page without finding its target. The cancellation phase never raises this;
// a missing reservation there is simply nothing to cancel.
type SearchExhaustedError struct {
	What string
}

func (e SearchExhaustedError) Error() string {
	return fmt.Sprintf("%s not found on any page", e.What)
}

package reservation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DurationOverride is the slot length written into the booking form on every
// run. The portal pre-selects 30 minutes; submitting that default is never
// acceptable, so the override is unconditional and not user-configurable.
const (
	DurationOverride      = "15"
	DurationOverrideLabel = "15分"
)

// Placeholder values applied when the run payload omits a field.
const (
	DefaultStation         = "大和テストステーション"
	DefaultPlate           = "品川500あ1234"
	DefaultReservationTime = "2026-02-24 10:30"
)

const timeLayout = "2006-01-02 15:04"

// Request is the single-run work order: which station, which vehicle, and the
// desired slot start. Immutable after ParsePayload.
type Request struct {
	Station         string
	Plate           string
	ReservationTime string
}

// TimeParts is ReservationTime decomposed into the three values the booking
// form's cascading selects expect.
type TimeParts struct {
	Date   string
	Hour   string
	Minute string
}

// ParsePayload decodes the JSON payload passed on the command line and applies
// the placeholder defaults. The reservation time is validated here so that a
// malformed payload fails before any browser is started.
func ParsePayload(raw string) (Request, error) {
	var p struct {
		Station         string `json:"station"`
		Plate           string `json:"plate"`
		ReservationTime string `json:"reservation_time"`
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Request{}, fmt.Errorf("parse payload: %w", err)
	}
	req := Request{
		Station:         strings.TrimSpace(p.Station),
		Plate:           strings.TrimSpace(p.Plate),
		ReservationTime: strings.TrimSpace(p.ReservationTime),
	}
	if req.Station == "" {
		req.Station = DefaultStation
	}
	if req.Plate == "" {
		req.Plate = DefaultPlate
	}
	if req.ReservationTime == "" {
		req.ReservationTime = DefaultReservationTime
	}
	if _, err := req.TimeParts(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// TimeParts splits ReservationTime ("YYYY-MM-DD HH:MM") into its select-box
// components. The split values are passed through verbatim; the portal's
// option values use the same zero-padded forms.
func (r Request) TimeParts() (TimeParts, error) {
	if _, err := time.Parse(timeLayout, r.ReservationTime); err != nil {
		return TimeParts{}, fmt.Errorf("reservation time %q: want YYYY-MM-DD HH:MM", r.ReservationTime)
	}
	date, clock, ok := strings.Cut(r.ReservationTime, " ")
	if !ok {
		return TimeParts{}, fmt.Errorf("reservation time %q: want YYYY-MM-DD HH:MM", r.ReservationTime)
	}
	hour, minute, ok := strings.Cut(clock, ":")
	if !ok || date == "" || hour == "" || minute == "" {
		return TimeParts{}, fmt.Errorf("reservation time %q: want YYYY-MM-DD HH:MM", r.ReservationTime)
	}
	return TimeParts{Date: date, Hour: hour, Minute: minute}, nil
}

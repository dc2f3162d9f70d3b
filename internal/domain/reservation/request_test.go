package reservation

import (
	"strings"
	"testing"
)

func TestParsePayload(t *testing.T) {
	req, err := ParsePayload(`{"station":"Yamato Test Station","plate":"ABC-1234","reservation_time":"2026-02-24 10:30"}`)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if req.Station != "Yamato Test Station" || req.Plate != "ABC-1234" {
		t.Errorf("unexpected request: %+v", req)
	}
	parts, err := req.TimeParts()
	if err != nil {
		t.Fatalf("TimeParts: %v", err)
	}
	if parts.Date != "2026-02-24" || parts.Hour != "10" || parts.Minute != "30" {
		t.Errorf("decomposition mismatch: %+v", parts)
	}
}

func TestParsePayloadDefaults(t *testing.T) {
	req, err := ParsePayload(`{}`)
	if err != nil {
		t.Fatalf("ParsePayload: %v", err)
	}
	if req.Station != DefaultStation {
		t.Errorf("station = %q, want default", req.Station)
	}
	if req.Plate != DefaultPlate {
		t.Errorf("plate = %q, want default", req.Plate)
	}
	if req.ReservationTime != DefaultReservationTime {
		t.Errorf("reservation time = %q, want default", req.ReservationTime)
	}
}

func TestParsePayloadMalformedJSON(t *testing.T) {
	if _, err := ParsePayload(`{not json`); err == nil {
		t.Fatal("want error for malformed JSON")
	}
}

func TestParsePayloadBadTime(t *testing.T) {
	for _, in := range []string{
		"2026-02-2410:30", // missing separator
		"10:30",
		"2026-02-24",
		"2026/02/24 10:30",
		"garbage",
	} {
		_, err := ParsePayload(`{"reservation_time":"` + in + `"}`)
		if err == nil {
			t.Errorf("ParsePayload(%q): want error", in)
			continue
		}
		if !strings.Contains(err.Error(), "YYYY-MM-DD HH:MM") {
			t.Errorf("ParsePayload(%q): error %q does not name the expected format", in, err)
		}
	}
}

func TestTimePartsZeroPadding(t *testing.T) {
	req := Request{ReservationTime: "2026-03-01 09:05"}
	parts, err := req.TimeParts()
	if err != nil {
		t.Fatalf("TimeParts: %v", err)
	}
	if parts.Hour != "09" || parts.Minute != "05" {
		t.Errorf("padded components must pass through verbatim, got %+v", parts)
	}
}

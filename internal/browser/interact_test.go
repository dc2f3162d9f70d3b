package browser

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func failingInteractor(t *testing.T, logs *bytes.Buffer) (*Interactor, *[]string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(logs, nil))
	labels := &[]string{}
	rec := NewRecorder(t.TempDir(), log, func(ctx context.Context) ([]byte, error) {
		return []byte{1}, nil
	})
	rec.OnRecord = func(r Record) { *labels = append(*labels, r.Label) }
	return NewInteractor(log, rec), labels
}

func TestClickFailureLogsSelectorAndCaptures(t *testing.T) {
	var logs bytes.Buffer
	in, labels := failingInteractor(t, &logs)

	// A cancelled context makes the bounded wait fail on its first attempt.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := in.ClickWithin(ctx, Query("#reserveBtn"), time.Second)
	var timeoutErr InteractionTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want InteractionTimeoutError", err)
	}
	if timeoutErr.Op != "click" || timeoutErr.Selector != "#reserveBtn" {
		t.Errorf("error identifies %q/%q", timeoutErr.Op, timeoutErr.Selector)
	}
	if out := logs.String(); !strings.Contains(out, "click failed") || !strings.Contains(out, "#reserveBtn") {
		t.Errorf("failure log missing selector: %q", out)
	}
	if len(*labels) != 1 || (*labels)[0] != "ERROR_ClickFailed" {
		t.Errorf("evidence labels = %v, want [ERROR_ClickFailed]", *labels)
	}
}

func TestSetValueFailureLogsValueAndCaptures(t *testing.T) {
	var logs bytes.Buffer
	in, labels := failingInteractor(t, &logs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := in.SetValue(ctx, Query("#cardNo1"), "0030")
	var timeoutErr InteractionTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v, want InteractionTimeoutError", err)
	}
	out := logs.String()
	if !strings.Contains(out, "input failed") || !strings.Contains(out, "#cardNo1") || !strings.Contains(out, "0030") {
		t.Errorf("failure log missing selector or value: %q", out)
	}
	if len(*labels) != 1 || (*labels)[0] != "ERROR_InputFailed" {
		t.Errorf("evidence labels = %v, want [ERROR_InputFailed]", *labels)
	}
}

func TestPopupOutcomeString(t *testing.T) {
	cases := map[PopupOutcome]string{
		PopupAbsent:   "absent",
		PopupResolved: "resolved",
		PopupStuck:    "stuck",
	}
	for outcome, want := range cases {
		if got := outcome.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", outcome, got, want)
		}
	}
}

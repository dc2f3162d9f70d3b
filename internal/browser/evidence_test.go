package browser

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderCapturesLabelledFile(t *testing.T) {
	dir := t.TempDir()
	var hooked []Record
	rec := NewRecorder(dir, discardLogger(), func(ctx context.Context) ([]byte, error) {
		return []byte("png-bytes"), nil
	})
	rec.OnRecord = func(r Record) { hooked = append(hooked, r) }

	got := rec.Capture(context.Background(), "ERROR_ClickFailed")
	if got.ID == "" {
		t.Fatal("expected a populated record")
	}
	base := filepath.Base(got.URI)
	if !strings.HasPrefix(base, "ERROR_ClickFailed_") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected evidence name %q", base)
	}
	data, err := os.ReadFile(got.URI)
	if err != nil {
		t.Fatalf("read evidence: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("evidence content = %q", data)
	}
	if len(hooked) != 1 || hooked[0].ID != got.ID {
		t.Errorf("OnRecord hook saw %+v", hooked)
	}
}

func TestRecorderCaptureFailureIsSilent(t *testing.T) {
	rec := NewRecorder(t.TempDir(), discardLogger(), func(ctx context.Context) ([]byte, error) {
		return nil, errors.New("no page")
	})
	rec.OnRecord = func(Record) { t.Error("hook must not fire on failed capture") }

	got := rec.Capture(context.Background(), "FATAL_ERROR")
	if got != (Record{}) {
		t.Errorf("want zero record on failure, got %+v", got)
	}
}

func TestRecorderCreatesDirOnDemand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "evidence")
	rec := NewRecorder(dir, discardLogger(), func(ctx context.Context) ([]byte, error) {
		return []byte{1}, nil
	})
	got := rec.Capture(context.Background(), "SUCCESS_ReservationCompleted")
	if got.URI == "" {
		t.Fatal("capture failed")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("evidence dir not created: %v", err)
	}
}

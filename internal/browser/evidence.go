package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// CaptureFunc produces a full-page screenshot of the current page.
type CaptureFunc func(ctx context.Context) ([]byte, error)

// Record describes one captured evidence artifact.
type Record struct {
	ID        string
	Label     string
	Timestamp time.Time
	URI       string
}

// Recorder writes labelled screenshots for the significant moments of a run,
// success banners included. Capture never fails the caller: a step that is
// already failing must not fail harder because the camera broke.
type Recorder struct {
	// OnRecord, when set, is called with every record written. The audit
	// trail hooks in here.
	OnRecord func(Record)

	dir     string
	log     *slog.Logger
	capture CaptureFunc
}

// NewRecorder returns a Recorder writing PNGs under dir. A nil capture
// defaults to a real browser screenshot.
func NewRecorder(dir string, log *slog.Logger, capture CaptureFunc) *Recorder {
	if capture == nil {
		capture = func(ctx context.Context) ([]byte, error) {
			var buf []byte
			if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
				return nil, err
			}
			return buf, nil
		}
	}
	return &Recorder{dir: dir, log: log, capture: capture}
}

// Capture takes a screenshot and stores it under a label_HHMMSS.png name.
// Best effort: failures are logged and an empty Record is returned.
func (r *Recorder) Capture(ctx context.Context, label string) Record {
	ts := time.Now()
	buf, err := r.capture(ctx)
	if err != nil {
		r.log.Warn("evidence capture failed", "label", label, "error", err)
		return Record{}
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		r.log.Warn("evidence dir", "dir", r.dir, "error", err)
		return Record{}
	}
	name := fmt.Sprintf("%s_%s.png", label, ts.Format("150405"))
	path := filepath.Join(r.dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		r.log.Warn("evidence write failed", "path", path, "error", err)
		return Record{}
	}

	rec := Record{
		ID:        uuid.NewString(),
		Label:     label,
		Timestamp: ts,
		URI:       path,
	}
	r.log.Info("evidence", "label", label, "path", path)
	if r.OnRecord != nil {
		r.OnRecord(rec)
	}
	return rec
}

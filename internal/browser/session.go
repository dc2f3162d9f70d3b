package browser

import (
	"context"
	"fmt"
	"log"

	"github.com/chromedp/chromedp"
)

// Pinned desktop UA; the portal serves a different (and differently
// structured) page to unknown agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// Session owns the single Chrome instance for the run. There is exactly one
// writer (the sequential workflow); the session context is the handle every
// page interaction runs against.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches Chrome and connects to it. The parent context bounds
// the whole run; cancelling it tears the browser down.
func NewSession(parent context.Context, headless bool) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))

	// Run with no actions starts the browser eagerly so a broken Chrome
	// install fails here instead of mid-workflow.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

// Context returns the browser context all page actions run against.
func (s *Session) Context() context.Context { return s.ctx }

// Close releases the browser. Safe to call on every exit path.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

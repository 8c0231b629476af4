// Package browser provides Chrome/Chromedp initialization and configuration.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// Config holds browser configuration options.
type Config struct {
	ExecPath     string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	Timeout      time.Duration
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:     true,
		WindowWidth:  1440,
		WindowHeight: 900,
		Timeout:      5 * time.Minute,
	}
}

// Context holds the browser contexts and cancel functions.
type Context struct {
	Ctx         context.Context
	AllocCancel context.CancelFunc
	CtxCancel   context.CancelFunc
}

// New creates a new browser context with the given configuration. No user
// profile directory is used: each run starts from a clean, unauthenticated
// session.
func New(cfg Config) (*Context, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	ctx, timeoutCancel := context.WithTimeout(ctx, cfg.Timeout)

	// Wrap both cancels
	combinedCancel := func() {
		timeoutCancel()
		ctxCancel()
	}

	return &Context{
		Ctx:         ctx,
		AllocCancel: allocCancel,
		CtxCancel:   combinedCancel,
	}, nil
}

// Close closes all browser contexts.
func (c *Context) Close() {
	if c.CtxCancel != nil {
		c.CtxCancel()
	}
	if c.AllocCancel != nil {
		c.AllocCancel()
	}
}

// Navigate navigates to the given URL and waits for the document to be ready.
func Navigate(ctx context.Context, url string) error {
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// CurrentURL returns the current page URL.
func CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

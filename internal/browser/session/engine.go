// internal/browser/session/engine.go
//
// Package session binds the pure analysis code to a real browser through
// chromedp. One Engine owns one long-lived browser process; every analysis
// call opens an independent page (tab) context against it and closes that
// context unconditionally when done.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xdruid77/pagescope/internal/config"
)

// Engine is the shared browser resource. The browser process is acquired
// lazily on first use, guarded by a mutex so concurrent callers never race
// the creation, and released only by Close at shutdown.
type Engine struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewEngine prepares an engine without starting a browser.
func NewEngine(cfg config.BrowserConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, logger: logger.Named("session")}
}

// acquire returns the shared browser context, starting the browser process
// on first use. A failed start leaves the engine reusable: the next call
// retries.
func (e *Engine) acquire(ctx context.Context) (context.Context, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCtx != nil {
		return e.browserCtx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The allocator lives on the background context: the browser process
	// outlives individual analysis calls.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the process eagerly so acquisition failures surface here rather
	// than inside the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	e.logger.Info("Browser process started.",
		zap.Bool("headless", e.cfg.Headless))

	e.allocCancel = allocCancel
	e.browserCtx = browserCtx
	e.browserCancel = browserCancel
	return e.browserCtx, nil
}

func (e *Engine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !e.cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if e.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if e.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.ExecPath))
	}
	if e.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(e.cfg.UserAgent))
	}
	opts = append(opts, chromedp.Flag("disable-dev-shm-usage", true))
	return opts
}

// NewPage opens an independent page context. Concurrent analysis calls are
// safe with respect to each other because each owns its own page.
func (e *Engine) NewPage(ctx context.Context) (*Page, error) {
	browserCtx, err := e.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return newPage(browserCtx, e.cfg, e.logger), nil
}

// Load is the one-call page lifecycle: open, navigate, capture, close. The
// page context is torn down regardless of outcome.
func (e *Engine) Load(ctx context.Context, url string) (*Document, error) {
	page, err := e.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	if err := page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	return page.Capture(ctx)
}

// Close tears down the shared browser process. The engine is not usable
// afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browserCancel != nil {
		e.browserCancel()
		e.browserCancel = nil
	}
	if e.allocCancel != nil {
		e.allocCancel()
		e.allocCancel = nil
	}
	e.browserCtx = nil
	return nil
}

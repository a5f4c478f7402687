// Package browser manages the Chrome session that the browser transport runs
// its fetches in.
//
// The admin console sits behind a login gate. When the transport is
// "browser", every remote call is executed inside an authenticated tab so it
// carries the console's session cookies.
package browser

import (
	"context"
	"log"
	"sync"

	"github.com/chromedp/chromedp"
)

// Options configures a new browser context.
type Options struct {
	Headless bool
	// Verbose forwards chromedp's own log output.
	Verbose bool
}

// DefaultOptions runs headless without chromedp logging.
var DefaultOptions = Options{Headless: true}

// ContextHolder provides thread-safe access to a browser context.
//
// The bulk worker pool issues fetches from many goroutines while the session
// keeper may swap the context after a restart.
//
// Thread-safety:
//   - All methods use mutex locking
//   - Context updates are atomic
type ContextHolder struct {
	mu     sync.RWMutex
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc
}

// NewContextHolder creates a holder with a freshly allocated browser context.
func NewContextHolder(opts Options) *ContextHolder {
	ctx, cancel := NewContext(opts)
	return &ContextHolder{opts: opts, ctx: ctx, cancel: cancel}
}

// Get returns the current browser context.
func (h *ContextHolder) Get() context.Context {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctx
}

// Set swaps in a new context, cancelling the old one first.
func (h *ContextHolder) Set(ctx context.Context, cancel context.CancelFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
	}
	h.ctx = ctx
	h.cancel = cancel
}

// Restart replaces the browser with a new one using the holder's options.
// Callers must log in again afterwards.
func (h *ContextHolder) Restart() context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ctx, h.cancel = RestartContext(h.cancel, h.opts)
	return h.ctx
}

// Cancel cancels the current browser context and cleans up resources.
func (h *ContextHolder) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// NewContext creates a new Chrome browser context. The browser process is
// started lazily by the first chromedp.Run.
func NewContext(opts Options) (context.Context, context.CancelFunc) {
	log.Println("  → Creating new browser context...")

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	var ctxOpts []chromedp.ContextOption
	if opts.Verbose {
		ctxOpts = append(ctxOpts, chromedp.WithLogf(log.Printf))
	}
	ctx, cancel := chromedp.NewContext(allocCtx, ctxOpts...)

	log.Println("  ✓ Browser context created successfully")
	return ctx, func() {
		cancel()
		allocCancel()
	}
}

// RestartContext cancels the old context and creates a new one.
func RestartContext(oldCancel context.CancelFunc, opts Options) (context.Context, context.CancelFunc) {
	log.Println("  ⚠️  Restarting browser context...")

	if oldCancel != nil {
		oldCancel()
		log.Println("  ✓ Old browser context cancelled")
	}

	return NewContext(opts)
}

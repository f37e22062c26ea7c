package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/chromedp/chromedp"

	"mailpilot/internal/logger"
)

// ChromeAutomation drives a headless Chrome through chromedp. One allocator
// is shared across pages; each NewPage call gets its own browser context.
type ChromeAutomation struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *logger.Logger
}

func NewChromeAutomation(ctx context.Context, logger *logger.Logger) *ChromeAutomation {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	return &ChromeAutomation{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}
}

func (a *ChromeAutomation) NewPage(ctx context.Context) (Page, error) {
	if err := a.allocCtx.Err(); err != nil {
		return nil, fmt.Errorf("browser allocator is closed: %w", err)
	}
	tabCtx, tabCancel := chromedp.NewContext(a.allocCtx)
	return &chromePage{ctx: tabCtx, cancel: tabCancel, logger: a.logger}, nil
}

// Shutdown tears down the shared allocator and every page spawned from it.
func (a *ChromeAutomation) Shutdown() {
	a.allocCancel()
}

type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	logger *logger.Logger
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(p.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 80)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}
	return html, nil
}

func (p *chromePage) Text(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return text, nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) Fill(ctx context.Context, selector, value string) error {
	if err := p.run(ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) Select(ctx context.Context, selector, value string) error {
	if err := p.run(ctx, chromedp.SetValue(selector, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to select %q on %q: %w", value, selector, err)
	}
	return nil
}

func (p *chromePage) Close() {
	p.once.Do(p.cancel)
}

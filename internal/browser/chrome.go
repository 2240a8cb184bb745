package browser

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"pricepulse/helpers"
	"pricepulse/logger"
	"pricepulse/pkg/errors"
)

// ChromeConfig controls the headless browser pool
type ChromeConfig struct {
	NavigationTimeout  time.Duration
	ElementWaitTimeout time.Duration
	MaxConcurrentPages int
}

// Chrome is a Navigator backed by a shared headless Chrome instance. One
// allocator is created at startup; each Open runs in its own tab context with
// its own timeout, and a semaphore bounds the number of live tabs.
type Chrome struct {
	browserCtx context.Context
	cancelAll  context.CancelFunc
	tabs       chan struct{}
	cfg        ChromeConfig
	log        *logger.Logger
}

var _ Navigator = (*Chrome)(nil)

// NewChrome starts the headless browser and returns the navigator
func NewChrome(cfg ChromeConfig) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Launch the browser process eagerly so a broken Chrome install fails
	// startup instead of the first scheduled scrape
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, err
	}

	cancelAll := func() {
		cancelBrowser()
		cancelAlloc()
	}

	return &Chrome{
		browserCtx: browserCtx,
		cancelAll:  cancelAll,
		tabs:       make(chan struct{}, cfg.MaxConcurrentPages),
		cfg:        cfg,
		log:        logger.ForComponent("browser"),
	}, nil
}

// Open navigates to url in a fresh tab, waits for waitSelector, and returns
// the rendered document
func (c *Chrome) Open(ctx context.Context, url, waitSelector string) (*Document, error) {
	select {
	case c.tabs <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.NewTimeout("", "page acquisition", ctx.Err())
	}
	defer func() { <-c.tabs }()

	tabCtx, cancelTab := chromedp.NewContext(c.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, c.cfg.NavigationTimeout)
	defer cancelTimeout()

	headers := network.Headers{
		"User-Agent":      helpers.RandomUserAgent(),
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://www.google.com/",
	}

	var html string
	actions := []chromedp.Action{
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(url),
	}
	if waitSelector != "" {
		actions = append(actions, c.waitVisible(waitSelector))
	}
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewTimeout("", "navigation to "+url, err)
		}
		return nil, err
	}

	return NewDocument(url, html)
}

// waitVisible wraps the element wait in its own shorter timeout so a page
// that loads but never shows the expected element fails before the full
// navigation budget is spent
func (c *Chrome) waitVisible(selector string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, c.cfg.ElementWaitTimeout)
		defer cancel()
		err := chromedp.WaitVisible(selector, chromedp.ByQuery).Do(waitCtx)
		if stderrors.Is(err, context.DeadlineExceeded) {
			return errors.NewTimeout("", "wait for "+selector, err)
		}
		return err
	})
}

// Close shuts the browser down, waiting for in-flight tabs up to the context
// deadline before forcing the process to exit
func (c *Chrome) Close(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		for i := 0; i < cap(c.tabs); i++ {
			c.tabs <- struct{}{}
		}
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		c.log.Warn().Msg("Closing browser with scrapes still in flight")
	}

	c.cancelAll()
	return nil
}

package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Artt4/disc-golf-equipment-price-comparator/logger"
	apperrors "github.com/Artt4/disc-golf-equipment-price-comparator/pkg/errors"
)

const chromeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ChromeSession is a headless browser scoped to a single scraper run. It is
// created inside Run and torn down on every exit path.
type ChromeSession struct {
	ctx        context.Context
	cancels    []context.CancelFunc
	store      string
	navTimeout time.Duration
	log        *logger.Logger
}

// NewChromeSession starts a headless Chrome context for one store run
func NewChromeSession(ctx context.Context, store string, navTimeout time.Duration) *ChromeSession {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(chromeUserAgent),
		chromedp.WindowSize(1280, 800),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	return &ChromeSession{
		ctx:        browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		store:      store,
		navTimeout: navTimeout,
		log:        logger.ForScraper(store),
	}
}

// Close tears down the browser and its allocator
func (s *ChromeSession) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Navigate loads a URL and waits for waitFor to become visible, bounded by
// wait. A timed-out selector wait is not fatal: callers proceed with
// whatever markup is present, which probing strategies read as an empty
// page.
func (s *ChromeSession) Navigate(url, waitFor string, wait time.Duration) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return apperrors.NewRender(s.store, "failed to navigate to "+url, err)
	}

	if waitFor == "" {
		return nil
	}

	waitCtx, cancelWait := context.WithTimeout(s.ctx, wait)
	defer cancelWait()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitFor, chromedp.ByQuery)); err != nil {
		s.log.Debug().
			Str("url", url).
			Str("selector", waitFor).
			Msg("Selector wait timed out, reading rendered markup as-is")
	}
	return nil
}

// HTML returns the current rendered markup
func (s *ChromeSession) HTML() (string, error) {
	var content string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &content, chromedp.ByQuery)); err != nil {
		return "", apperrors.NewRender(s.store, "failed to read rendered markup", err)
	}
	return content, nil
}

// Count returns the number of elements matching the selector
func (s *ChromeSession) Count(selector string) (int, error) {
	var n int
	script := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &n)); err != nil {
		return 0, apperrors.NewRender(s.store, "failed to count "+selector, err)
	}
	return n, nil
}

// IsVisible reports whether the selector matches a visible element
func (s *ChromeSession) IsVisible(selector string) (bool, error) {
	var visible bool
	script := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return !!el && el.offsetParent !== null; })()`, selector)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, apperrors.NewRender(s.store, "failed to check visibility of "+selector, err)
	}
	return visible, nil
}

// Click dispatches a click on the first visible element matching selector
func (s *ChromeSession) Click(selector string) error {
	clickCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	if err := chromedp.Run(clickCtx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return apperrors.NewRender(s.store, "failed to click "+selector, err)
	}
	return nil
}

// WaitCountAbove polls until more than n elements match the selector or the
// timeout elapses. It returns the final count and whether growth happened.
func (s *ChromeSession) WaitCountAbove(selector string, n int, timeout time.Duration) (int, bool) {
	deadline := time.Now().Add(timeout)
	for {
		count, err := s.Count(selector)
		if err == nil && count > n {
			return count, true
		}
		if time.Now().After(deadline) {
			if err != nil {
				return n, false
			}
			return count, false
		}
		select {
		case <-s.ctx.Done():
			return n, false
		case <-time.After(250 * time.Millisecond):
		}
	}
}

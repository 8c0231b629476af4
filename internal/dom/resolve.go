// Package dom locates and actuates page elements without relying on any
// single stable selector. The portal's markup changes between deploys, so
// every lookup works from an ordered candidate list: first match wins.
package dom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrTimeout indicates no candidate selector matched before the deadline.
var ErrTimeout = errors.New("element not found before deadline")

// PollInterval is how often WaitForAny re-queries the page.
const PollInterval = 200 * time.Millisecond

// WaitForAny repeatedly queries the page until one of the candidate
// selectors matches a present element, returning the selector that matched.
// Candidates are tried in order at every poll, so an earlier selector
// appearing late still wins over a later one that matched sooner.
func WaitForAny(ctx context.Context, selectors []string, timeout time.Duration) (string, error) {
	if len(selectors) == 0 {
		return "", fmt.Errorf("%w: empty selector set", ErrTimeout)
	}
	script := FirstMatchScript(selectors)
	deadline := time.Now().Add(timeout)

	for {
		var matched string
		if err := chromedp.Run(ctx, chromedp.Evaluate(script, &matched)); err != nil {
			return "", fmt.Errorf("selector poll: %w", err)
		}
		if matched != "" {
			return matched, nil
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: tried %s", ErrTimeout, strings.Join(selectors, ", "))
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}

// FirstMatchScript builds the page-side probe for one poll: it returns the
// first candidate selector that currently matches an element, or "".
func FirstMatchScript(selectors []string) string {
	list, _ := json.Marshal(selectors)
	return fmt.Sprintf(`
		(function() {
			const selectors = %s;
			for (const sel of selectors) {
				try {
					if (document.querySelector(sel)) return sel;
				} catch (e) {}
			}
			return "";
		})()
	`, list)
}

// WaitVisible blocks until the given selector is visible, bounded by timeout.
// Used as the final fallback after WaitForAny exhausts its candidates.
func WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %s", ErrTimeout, selector)
	}
	return nil
}

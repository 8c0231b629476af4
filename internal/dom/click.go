package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Normalize collapses runs of whitespace and trims, matching the page-side
// normalization applied to element text before comparison.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ClickByText finds the first button or link whose normalized visible text
// contains the given text (case-insensitive) and clicks it. Returns false
// rather than an error so callers can fall through a list of candidate texts.
func ClickByText(ctx context.Context, text string) bool {
	needle, _ := json.Marshal(strings.ToLower(Normalize(text)))
	script := fmt.Sprintf(`
		(function() {
			const needle = %s;
			const els = document.querySelectorAll('button, a, [role="button"], input[type="submit"], input[type="button"]');
			for (const el of els) {
				const text = (el.textContent || el.value || '').replace(/\s+/g, ' ').trim().toLowerCase();
				if (text.includes(needle)) {
					el.click();
					return true;
				}
			}
			return false;
		})()
	`, needle)

	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	return clicked
}

// ClickSubmit clicks the first submit-type control on the page. Last-resort
// login strategy when no candidate text matched anything.
func ClickSubmit(ctx context.Context) bool {
	script := `
		(function() {
			const el = document.querySelector('input[type="submit"], button[type="submit"]');
			if (el) {
				el.click();
				return true;
			}
			return false;
		})()
	`
	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	return clicked
}

// SelectAllScript returns page-side JS selecting the full contents of the
// input matching selector, so subsequently typed keys replace it.
func SelectAllScript(selector string) string {
	sel, _ := json.Marshal(selector)
	return fmt.Sprintf(`(function() {
		const el = document.querySelector(%s);
		if (el && el.select) el.select();
	})()`, sel)
}

// ClickExactLink clicks the anchor whose normalized text equals label
// exactly. Used to open the target record by its link label.
func ClickExactLink(ctx context.Context, label string) bool {
	needle, _ := json.Marshal(Normalize(label))
	script := fmt.Sprintf(`
		(function() {
			const needle = %s;
			for (const a of document.querySelectorAll('a')) {
				const text = (a.textContent || '').replace(/\s+/g, ' ').trim();
				if (text === needle) {
					a.click();
					return true;
				}
			}
			return false;
		})()
	`, needle)

	var clicked bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	return clicked
}

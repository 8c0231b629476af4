// Package records turns a snapshot of the portal's results table into rows
// and picks the target record to export.
package records

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoTarget indicates no row (and no fallback link) qualified as the
// record to export.
var ErrNoTarget = errors.New("no qualifying record found")

// Row is one results-table row: its cell texts in document order plus the
// label of the first link in the row, if any. Rows are re-extracted from the
// live page on every search; nothing here is cached.
type Row struct {
	Cells []string
	Link  string
}

// currencyMarkers are the characters that identify a cell as holding an
// amount. The portal renders amounts with a leading dollar sign; the rest
// are kept for safety.
const currencyMarkers = "$€£¥"

// HasCurrencyMarker reports whether the raw cell text looks like an amount.
func HasCurrencyMarker(s string) bool {
	return strings.ContainsAny(s, currencyMarkers)
}

// ParseAmount converts a rendered amount like "$1,234.50" to a number by
// stripping every character that is not a digit, period, or minus sign.
func ParseAmount(s string) (float64, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, errors.New("no numeric content")
	}
	return strconv.ParseFloat(cleaned, 64)
}

// Amount returns the parsed value of the row's amount cell: the first cell
// whose raw text contains a currency marker. ok is false when the row has no
// such cell or it does not parse.
func (r Row) Amount() (float64, bool) {
	for _, cell := range r.Cells {
		if !HasCurrencyMarker(cell) {
			continue
		}
		v, err := ParseAmount(cell)
		if err != nil {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// ParseTable extracts rows from an HTML snapshot of the results table.
// Header rows (no td cells) are skipped.
func ParseTable(html string) ([]Row, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var rows []Row
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}
		row := Row{}
		cells.Each(func(_ int, td *goquery.Selection) {
			row.Cells = append(row.Cells, strings.TrimSpace(td.Text()))
		})
		if a := tr.Find("a").First(); a.Length() > 0 {
			row.Link = strings.Join(strings.Fields(a.Text()), " ")
		}
		rows = append(rows, row)
	})
	return rows, nil
}

// SelectTarget applies the selection invariant: the first row in document
// order with a non-empty link label and a strictly positive amount. A zero
// amount never qualifies.
func SelectTarget(rows []Row) (Row, bool) {
	for _, row := range rows {
		if row.Link == "" {
			continue
		}
		if v, ok := row.Amount(); ok && v > 0 {
			return row, true
		}
	}
	return Row{}, false
}

// invoiceLinkPattern matches link text that is a bare numeric identifier of
// at least five digits, the shape of the portal's invoice numbers.
var invoiceLinkPattern = regexp.MustCompile(`^\d{5,}$`)

// FirstInvoiceLink scans link texts for the first one that looks like an
// invoice number. Fallback path for when the results table cannot be parsed.
func FirstInvoiceLink(linkTexts []string) (string, bool) {
	for _, text := range linkTexts {
		text = strings.TrimSpace(text)
		if invoiceLinkPattern.MatchString(text) {
			return text, true
		}
	}
	return "", false
}

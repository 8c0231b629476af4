// Package session drives the portal through one export run: login, account
// search, record selection, export trigger, download capture. The sequence
// is strictly forward; any failed state aborts the run.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"

	"github.com/R3v3ill3/incolinkdownloader/internal/artifact"
	"github.com/R3v3ill3/incolinkdownloader/internal/browser"
	"github.com/R3v3ill3/incolinkdownloader/internal/config"
	"github.com/R3v3ill3/incolinkdownloader/internal/dom"
	"github.com/R3v3ill3/incolinkdownloader/internal/intercept"
	"github.com/R3v3ill3/incolinkdownloader/internal/records"
)

// ErrNoDownload indicates the export was triggered but no attachment
// response arrived in time. Distinct from element timeouts so the two
// failure modes are tellable apart in logs.
var ErrNoDownload = errors.New("no downloadable response observed")

// settleWindow is how long the network must stay idle before a page is
// considered quiescent.
const settleWindow = 500 * time.Millisecond

// Driver owns the single page for the run. Only the driver mutates page
// state; the interceptor it carries is a passive observer on the same page.
type Driver struct {
	ctx      context.Context
	cfg      config.Config
	sel      config.Selectors
	memberNo string
	net      *intercept.Interceptor
	log      zerolog.Logger
}

// New builds a driver around an already-attached interceptor.
func New(ctx context.Context, cfg config.Config, sel config.Selectors, memberNo string, net *intercept.Interceptor, log zerolog.Logger) *Driver {
	return &Driver{
		ctx:      ctx,
		cfg:      cfg,
		sel:      sel,
		memberNo: memberNo,
		net:      net,
		log:      log,
	}
}

// Run executes the whole state machine and returns the path of the written
// artifact.
func (d *Driver) Run() (string, error) {
	if err := d.login(); err != nil {
		return "", err
	}
	if err := d.search(); err != nil {
		return "", err
	}
	target, err := d.selectRecord()
	if err != nil {
		return "", err
	}
	if err := d.openRecord(target); err != nil {
		return "", err
	}
	return d.export(target)
}

func (d *Driver) login() error {
	d.log.Info().Str("url", d.cfg.PortalURL).Msg("opening portal")
	if err := browser.Navigate(d.ctx, d.cfg.PortalURL); err != nil {
		return fmt.Errorf("open portal: %w", err)
	}
	d.quiesce("portal root")

	emailSel, err := d.resolveInput(d.sel.EmailInputs)
	if err != nil {
		return fmt.Errorf("email field: %w", err)
	}
	passwordSel, err := d.resolveInput(d.sel.PasswordInputs)
	if err != nil {
		return fmt.Errorf("password field: %w", err)
	}

	if err := chromedp.Run(d.ctx,
		chromedp.SendKeys(emailSel, d.cfg.Email, chromedp.ByQuery),
		chromedp.SendKeys(passwordSel, d.cfg.Password, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("enter credentials: %w", err)
	}
	d.log.Info().Msg("credentials entered")

	if !d.clickAny(d.sel.LoginTexts) && !dom.ClickSubmit(d.ctx) {
		return fmt.Errorf("login control: %w", dom.ErrTimeout)
	}
	d.log.Info().Msg("login submitted")
	return nil
}

func (d *Driver) search() error {
	d.quiesce("after login")

	searchSel, err := d.resolveInput(d.sel.SearchInputs)
	if err != nil {
		return fmt.Errorf("search field: %w", err)
	}

	// Select existing content so the typed member number replaces it, then
	// submit with Enter; the portal searches on keypress, not a button.
	if err := chromedp.Run(d.ctx,
		chromedp.Click(searchSel, chromedp.ByQuery),
		chromedp.Evaluate(dom.SelectAllScript(searchSel), nil),
		chromedp.SendKeys(searchSel, d.memberNo, chromedp.ByQuery),
		chromedp.KeyEvent(kb.Enter),
	); err != nil {
		return fmt.Errorf("search for %s: %w", d.memberNo, err)
	}
	d.log.Info().Str("member", d.memberNo).Msg("search submitted")

	d.quiesce("search results")
	return nil
}

// selectRecord extracts rows from the results table and applies the
// selection invariant: first row with a link label and a strictly positive
// amount. If no table can be read, falls back to the first link on the page
// that looks like an invoice number.
func (d *Driver) selectRecord() (records.Row, error) {
	rows := d.tableRows()

	if len(rows) == 0 {
		d.log.Warn().Msg("no parseable results table, scanning links")
		if label, ok := records.FirstInvoiceLink(d.linkTexts()); ok {
			d.log.Info().Str("invoice", label).Msg("target found via link scan")
			return records.Row{Link: label}, nil
		}
		return records.Row{}, fmt.Errorf("record selection: %w", records.ErrNoTarget)
	}

	target, ok := records.SelectTarget(rows)
	if !ok {
		return records.Row{}, fmt.Errorf("record selection: %w", records.ErrNoTarget)
	}
	amount, _ := target.Amount()
	d.log.Info().Str("invoice", target.Link).Float64("amount", amount).Msg("target record selected")
	return target, nil
}

func (d *Driver) openRecord(target records.Row) error {
	if !dom.ClickExactLink(d.ctx, target.Link) {
		return fmt.Errorf("open record %s: %w", target.Link, dom.ErrTimeout)
	}
	d.log.Info().Str("invoice", target.Link).Msg("record opened")
	d.quiesce("record page")
	return nil
}

// export arms the interceptor, triggers the export control, and waits for
// the attachment. Arming strictly precedes the click: the response can land
// before the click's own settle.
func (d *Driver) export(target records.Row) (string, error) {
	capture := d.net.Arm()

	if !d.clickAny(d.sel.ExportTexts) {
		return "", fmt.Errorf("export control: %w", dom.ErrTimeout)
	}
	d.log.Info().Msg("export triggered, awaiting download")

	dl, ok := capture.Await(d.ctx, d.cfg.DownloadTimeout)
	if !ok {
		return "", ErrNoDownload
	}

	name := dl.Name
	if name == "" {
		name = d.fallbackName(target)
		d.log.Warn().Str("name", name).Msg("disposition named no file, using fallback")
	}

	path, err := artifact.Write(d.cfg.OutputDir, name, dl.Body)
	if err != nil {
		return "", err
	}
	d.log.Info().Str("path", path).Int("bytes", len(dl.Body)).Msg("artifact written")
	return path, nil
}

// fallbackName derives a deterministic artifact name from the target's link
// label, or the member number when even that is missing.
func (d *Driver) fallbackName(target records.Row) string {
	if target.Link != "" {
		return fmt.Sprintf("invoice-%s.pdf", target.Link)
	}
	return fmt.Sprintf("invoice-%s.pdf", d.memberNo)
}

// resolveInput runs the fallback-selector strategy: poll the whole candidate
// set, then as a last resort block on the primary candidate alone.
func (d *Driver) resolveInput(candidates []string) (string, error) {
	sel, err := dom.WaitForAny(d.ctx, candidates, d.cfg.ElementTimeout)
	if err == nil {
		return sel, nil
	}
	if !errors.Is(err, dom.ErrTimeout) || len(candidates) == 0 {
		return "", err
	}
	if werr := dom.WaitVisible(d.ctx, candidates[0], d.cfg.ElementTimeout); werr != nil {
		return "", err
	}
	return candidates[0], nil
}

// clickAny tries each candidate text in priority order, first success wins.
func (d *Driver) clickAny(texts []string) bool {
	for _, text := range texts {
		if dom.ClickByText(d.ctx, text) {
			d.log.Debug().Str("text", text).Msg("clicked")
			return true
		}
	}
	return false
}

// tableRows snapshots the results table and parses it; empty on any failure
// so the caller can fall back to the link scan.
func (d *Driver) tableRows() []records.Row {
	tableSel, err := dom.WaitForAny(d.ctx, d.sel.ResultsTables, d.cfg.ElementTimeout)
	if err != nil {
		return nil
	}
	var html string
	if err := chromedp.Run(d.ctx, chromedp.OuterHTML(tableSel, &html, chromedp.ByQuery)); err != nil {
		return nil
	}
	rows, err := records.ParseTable(html)
	if err != nil {
		return nil
	}
	return rows
}

// linkTexts collects the text of every anchor on the page, in document
// order.
func (d *Driver) linkTexts() []string {
	var texts []string
	script := `Array.from(document.querySelectorAll('a')).map(a => (a.textContent || '').trim())`
	if err := chromedp.Run(d.ctx, chromedp.Evaluate(script, &texts)); err != nil {
		return nil
	}
	return texts
}

// quiesce waits for the network to settle after an action. Quiescence is a
// heuristic, so hitting the bound only logs.
func (d *Driver) quiesce(stage string) {
	if !d.net.WaitQuiescent(d.ctx, settleWindow, d.cfg.QuiesceTimeout) {
		d.log.Warn().Str("stage", stage).Msg("network never settled, continuing")
	}
}

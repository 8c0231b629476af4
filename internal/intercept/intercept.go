// Package intercept observes the page's network stream for the life of the
// session. It captures the export download, which has no stable URL and can
// only be recognized by its attachment disposition, and it tracks in-flight
// requests so the session can wait for network quiescence.
package intercept

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Download is a captured attachment response: its body plus the name parsed
// from the disposition header (empty when the header named no file).
type Download struct {
	URL         string
	Disposition string
	Name        string
	Body        []byte
}

// Capture is an armed, single-use slot for the next attachment response.
// It must be created before the click that triggers the download: the
// response can arrive before the click's own navigation settles.
type Capture struct {
	ch chan *Download
}

// Await blocks until the download is delivered or the timeout elapses.
// A timeout is not an error here; the caller decides whether it is fatal.
func (c *Capture) Await(ctx context.Context, timeout time.Duration) (*Download, bool) {
	select {
	case d := <-c.ch:
		return d, true
	case <-time.After(timeout):
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

type pendingDownload struct {
	url         string
	disposition string
}

// Interceptor listens to CDP network events on one page. It never mutates
// page state; the session driver owns all navigation and input.
type Interceptor struct {
	ctx context.Context
	log zerolog.Logger

	mu       sync.Mutex
	inflight map[network.RequestID]struct{}
	pending  map[network.RequestID]*pendingDownload
	armed    *Capture
}

// Attach subscribes an Interceptor to the page behind ctx and enables the
// CDP network domain. Must happen before the first navigation so no early
// response is missed.
func Attach(ctx context.Context, log zerolog.Logger) (*Interceptor, error) {
	i := &Interceptor{
		ctx:      ctx,
		log:      log,
		inflight: make(map[network.RequestID]struct{}),
		pending:  make(map[network.RequestID]*pendingDownload),
	}
	chromedp.ListenTarget(ctx, i.handle)
	if err := chromedp.Run(ctx, network.Enable()); err != nil {
		return nil, err
	}
	return i, nil
}

// Arm readies a capture slot for the next attachment response. Always call
// this before the click that triggers the export.
func (i *Interceptor) Arm() *Capture {
	c := &Capture{ch: make(chan *Download, 1)}
	i.mu.Lock()
	i.armed = c
	i.mu.Unlock()
	return c
}

func (i *Interceptor) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		i.mu.Lock()
		i.inflight[e.RequestID] = struct{}{}
		i.mu.Unlock()
		if e.Request != nil && isDiagnosticURL(e.Request.URL) {
			i.log.Debug().Str("method", e.Request.Method).Str("url", e.Request.URL).Msg("request")
		}

	case *network.EventResponseReceived:
		if e.Response == nil {
			return
		}
		if isDiagnosticURL(e.Response.URL) {
			i.log.Debug().Int64("status", e.Response.Status).Str("url", e.Response.URL).Msg("response")
		}
		disposition, ok := headerValue(e.Response.Headers, "Content-Disposition")
		if !ok || !IsAttachment(disposition) {
			return
		}
		i.log.Info().Str("url", e.Response.URL).Str("disposition", disposition).Msg("attachment response observed")
		i.mu.Lock()
		if i.armed != nil {
			i.pending[e.RequestID] = &pendingDownload{url: e.Response.URL, disposition: disposition}
		}
		i.mu.Unlock()

	case *network.EventLoadingFinished:
		i.mu.Lock()
		delete(i.inflight, e.RequestID)
		pd := i.pending[e.RequestID]
		var slot *Capture
		if pd != nil {
			delete(i.pending, e.RequestID)
			slot = i.armed
			i.armed = nil
		}
		i.mu.Unlock()
		if pd != nil && slot != nil {
			// The body is only retrievable once loading has finished, and
			// fetching it from inside the event handler would deadlock.
			go i.deliver(e.RequestID, pd, slot)
		}

	case *network.EventLoadingFailed:
		i.mu.Lock()
		delete(i.inflight, e.RequestID)
		delete(i.pending, e.RequestID)
		i.mu.Unlock()
	}
}

// deliver fetches the finished response body and hands it to the armed
// capture slot.
func (i *Interceptor) deliver(id network.RequestID, pd *pendingDownload, slot *Capture) {
	c := chromedp.FromContext(i.ctx)
	ectx := cdp.WithExecutor(i.ctx, c.Target)

	body, err := network.GetResponseBody(id).Do(ectx)
	if err != nil {
		i.log.Warn().Err(err).Str("url", pd.url).Msg("could not read attachment body")
		return
	}

	name, _ := Filename(pd.disposition)
	d := &Download{
		URL:         pd.url,
		Disposition: pd.disposition,
		Name:        name,
		Body:        body,
	}
	select {
	case slot.ch <- d:
	default:
	}
}

// InFlight returns the number of requests currently awaiting completion.
func (i *Interceptor) InFlight() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.inflight)
}

// WaitQuiescent blocks until the network has been idle for the settle
// window, bounded by timeout. Returns false if the bound expired first;
// quiescence is a heuristic, so callers typically log and continue.
func (i *Interceptor) WaitQuiescent(ctx context.Context, settle, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	var quietSince time.Time

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if i.InFlight() == 0 {
			if quietSince.IsZero() {
				quietSince = time.Now()
			} else if time.Since(quietSince) >= settle {
				return true
			}
		} else {
			quietSince = time.Time{}
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// headerValue finds a header in a CDP header map, case-insensitively.
func headerValue(headers network.Headers, name string) (string, bool) {
	for k, v := range headers {
		if !strings.EqualFold(k, name) {
			continue
		}
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}

// isDiagnosticURL reports whether network activity on this URL is worth
// logging: anything that looks invoice- or account-related.
func isDiagnosticURL(url string) bool {
	lower := strings.ToLower(url)
	return strings.Contains(lower, "invoice") ||
		strings.Contains(lower, "account") ||
		strings.Contains(lower, "member")
}

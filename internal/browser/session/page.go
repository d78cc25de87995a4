// internal/browser/session/page.go
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/xdruid77/pagescope/internal/browser/dom"
	"github.com/xdruid77/pagescope/internal/config"
)

// Document is what one capture pass hands to the analysis layer: the parsed
// tree, the runtime facts keyed by stamp index, and the page identity.
type Document struct {
	URL   string
	Title string
	Root  *html.Node
	Facts dom.RuntimeFacts
}

// Page is one tab context. It must not be shared between analysis calls; a
// call's steps (navigate, capture) run to completion on its own page.
type Page struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.BrowserConfig
	logger *zap.Logger
}

func newPage(browserCtx context.Context, cfg config.BrowserConfig, logger *zap.Logger) *Page {
	id := uuid.New().String()
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	return &Page{
		id:     id,
		ctx:    tabCtx,
		cancel: tabCancel,
		cfg:    cfg,
		logger: logger.With(zap.String("page_id", id)),
	}
}

// Navigate loads the URL and waits for the network to go quiet, then for
// the configured settle delay. Failures are fatal to this analysis call and
// are not retried here.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Debug("Navigating.", zap.String("url", url))

	waiter := newIdleWaiter(p.ctx, p.cfg.NetworkIdleQuiet)
	if err := chromedp.Run(p.ctx, network.Enable(), chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := waiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for network idle on %s: %w", url, err)
	}
	if p.cfg.PostLoadWait > 0 {
		if err := chromedp.Run(p.ctx, chromedp.Sleep(p.cfg.PostLoadWait)); err != nil {
			return fmt.Errorf("settle after %s: %w", url, err)
		}
	}
	return nil
}

// stampScript tags every whitelisted element with its index and reports the
// runtime facts the pure extractor cannot derive from markup: rendered box
// size, the effective disabled state, and computed pointer-events. The
// whitelist mirrors the extractor's XPath union.
const stampScript = `(() => {
	const sel = "a,button,input,select,textarea,[onclick],[data-testid]," +
		"[role=button],[role=link],[role=tab],[role=menuitem]," +
		"[role=checkbox],[role=radio],[role=textbox],[role=combobox]," +
		"[role=searchbox],[role=switch],[role=option]";
	const out = [];
	let i = 0;
	for (const el of document.querySelectorAll(sel)) {
		try {
			el.setAttribute("` + dom.StampAttr + `", String(i));
			const rect = el.getBoundingClientRect();
			const style = window.getComputedStyle(el);
			out.push({
				i: i,
				w: rect.width,
				h: rect.height,
				disabled: !!el.disabled,
				pointerEvents: style.pointerEvents,
			});
		} catch (e) {
			// A node that throws mid-read is skipped, not fatal.
		}
		i++;
	}
	return out;
})()`

type stampFact struct {
	Index int `json:"i"`
	dom.ElementFacts
}

// Capture stamps the live document, pulls its serialized form, and parses it
// locally. All traversal from here on happens in the dom package against
// this tree.
func (p *Page) Capture(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rawFacts []stampFact
		outer    string
		title    string
		location string
	)
	err := chromedp.Run(p.ctx,
		chromedp.Evaluate(stampScript, &rawFacts),
		chromedp.OuterHTML("html", &outer, chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.Location(&location),
	)
	if err != nil {
		return nil, fmt.Errorf("capture page: %w", err)
	}

	root, err := htmlquery.Parse(strings.NewReader(outer))
	if err != nil {
		return nil, fmt.Errorf("parse captured document: %w", err)
	}

	facts := make(dom.RuntimeFacts, len(rawFacts))
	for _, f := range rawFacts {
		facts[f.Index] = f.ElementFacts
	}

	p.logger.Debug("Captured document.",
		zap.String("url", location),
		zap.Int("stamped_elements", len(facts)))

	return &Document{
		URL:   location,
		Title: title,
		Root:  root,
		Facts: facts,
	}, nil
}

// Close tears down the page context. It is the only teardown path and is
// safe to call more than once.
func (p *Page) Close() {
	p.cancel()
}

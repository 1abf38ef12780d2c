package browser

import (
	"context"
	"os"

	"github.com/gosom/scrapemate"
)

// PageWindow exposes a page handed out by scrapemate as a content window.
// scrapemate navigates synchronously, so DOM ready fires once Goto returns.
type PageWindow struct {
	page           scrapemate.BrowserPage
	events         *domEvents
	loading        *Spinner
	blockResources bool
}

func NewPageWindow(page scrapemate.BrowserPage, blockResources bool) *PageWindow {
	return &PageWindow{
		page:           page,
		events:         newDOMEvents(),
		loading:        NewSpinner(os.Stderr, "importing favorites"),
		blockResources: blockResources,
	}
}

// WaitForPreload installs the request proxy; scrapemate pages have no
// init script hook, so it is injected after navigation.
func (w *PageWindow) WaitForPreload(ctx context.Context) error {
	_, err := await(ctx, func() (any, error) {
		return w.page.Eval(bridgeScript)
	})
	if err != nil {
		return err
	}

	if w.blockResources {
		blockUnnecessaryResources(w.page)
	}

	return nil
}

func (w *PageWindow) LoadURL(ctx context.Context, url string) error {
	_, err := await(ctx, func() (struct{}, error) {
		_, err := w.page.Goto(url, scrapemate.WaitUntilNetworkIdle)
		return struct{}{}, err
	})
	if err != nil {
		return err
	}

	w.events.fire()

	return nil
}

func (w *PageWindow) OnDOMReady(fn func()) func() {
	return w.events.subscribe(fn)
}

func (w *PageWindow) ExecuteJavaScript(ctx context.Context, script string) (string, error) {
	v, err := await(ctx, func() (any, error) {
		return w.page.Eval(script)
	})
	if err != nil {
		return "", err
	}

	return toText(v)
}

func (w *PageWindow) ShowLoading(ctx context.Context) error {
	return w.loading.Show(ctx)
}

func (w *PageWindow) HideLoading(ctx context.Context) error {
	return w.loading.Hide(ctx)
}

func (w *PageWindow) Account(ctx context.Context) (string, bool, error) {
	html, err := await(ctx, w.page.Content)
	if err != nil {
		return "", false, err
	}

	return AccountLabel(html)
}

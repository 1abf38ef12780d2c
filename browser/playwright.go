package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/playwright-community/playwright-go"
)

const loginURL = "https://accounts.google.com/ServiceLogin?continue=https%3A%2F%2Fwww.google.com%2Fmaps"

type PlaywrightOptions struct {
	// ProfileDir keeps cookies between runs so a login survives.
	ProfileDir      string
	Headless        bool
	BlockResources  bool
	InstallBrowsers bool
	Locale          string
}

// PlaywrightWindow is a Chromium page with a persistent profile, driven
// through playwright. It implements gmaps.ContentWindow.
type PlaywrightWindow struct {
	pw      *playwright.Playwright
	bctx    playwright.BrowserContext
	page    playwright.Page
	events  *domEvents
	loading *Spinner
	opts    PlaywrightOptions
	log     *slog.Logger
}

func NewPlaywrightWindow(opts PlaywrightOptions) (*PlaywrightWindow, error) {
	if opts.ProfileDir == "" {
		return nil, errors.New("browser profile directory is required")
	}

	if opts.Locale == "" {
		opts.Locale = "ko-KR"
	}

	if err := os.MkdirAll(opts.ProfileDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}

	if opts.InstallBrowsers {
		err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
		if err != nil {
			return nil, fmt.Errorf("failed to install playwright browsers: %w", err)
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	bctx, err := pw.Chromium.LaunchPersistentContext(opts.ProfileDir, playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(opts.Headless),
		Locale:   playwright.String(opts.Locale),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else if page, err = bctx.NewPage(); err != nil {
		_ = bctx.Close()
		_ = pw.Stop()

		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	w := PlaywrightWindow{
		pw:      pw,
		bctx:    bctx,
		page:    page,
		events:  newDOMEvents(),
		loading: NewSpinner(os.Stderr, "importing favorites"),
		opts:    opts,
		log:     slog.Default().With("component", "browser"),
	}

	if err := page.AddInitScript(playwright.Script{Content: playwright.String(bridgeScript)}); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to install bridge: %w", err)
	}

	page.OnDOMContentLoaded(func(playwright.Page) {
		w.events.fire()
	})

	return &w, nil
}

func (w *PlaywrightWindow) WaitForPreload(ctx context.Context) error {
	_, err := await(ctx, func() (playwright.JSHandle, error) {
		return w.page.WaitForFunction(bridgeReadyScript, nil)
	})
	if err != nil {
		return err
	}

	if w.opts.BlockResources {
		blockUnnecessaryResources(playwrightEvaluator{page: w.page})
	}

	return nil
}

func (w *PlaywrightWindow) LoadURL(ctx context.Context, url string) error {
	w.log.Debug("navigating", "url", url)

	_, err := await(ctx, func() (playwright.Response, error) {
		return w.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
	})

	return err
}

func (w *PlaywrightWindow) OnDOMReady(fn func()) func() {
	return w.events.subscribe(fn)
}

func (w *PlaywrightWindow) ExecuteJavaScript(ctx context.Context, script string) (string, error) {
	v, err := await(ctx, func() (any, error) {
		return w.page.Evaluate(script)
	})
	if err != nil {
		return "", err
	}

	return toText(v)
}

func (w *PlaywrightWindow) ShowLoading(ctx context.Context) error {
	return w.loading.Show(ctx)
}

func (w *PlaywrightWindow) HideLoading(ctx context.Context) error {
	return w.loading.Hide(ctx)
}

// Account returns the signed-in account label of the current page, if any.
func (w *PlaywrightWindow) Account(ctx context.Context) (string, bool, error) {
	html, err := await(ctx, w.page.Content)
	if err != nil {
		return "", false, err
	}

	return AccountLabel(html)
}

// Login opens the Google sign-in page and blocks until the user closes the
// window or ctx is done. Must be used with a headed window.
func (w *PlaywrightWindow) Login(ctx context.Context) error {
	closed := make(chan struct{})
	w.page.OnClose(func(playwright.Page) {
		close(closed)
	})

	if err := w.LoadURL(ctx, loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	w.log.Info("sign in to Google in the opened window, then close it")

	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *PlaywrightWindow) Close() error {
	var errs []error

	if err := w.bctx.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
	}

	if err := w.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
	}

	return errors.Join(errs...)
}

type playwrightEvaluator struct {
	page playwright.Page
}

func (e playwrightEvaluator) Eval(js string, args ...any) (any, error) {
	return e.page.Evaluate(js, args...)
}

package gmaps

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gosom/gmaps-favorites/favorites"
)

const (
	// EntryURL opens the saved places panel of the web client.
	EntryURL = "https://www.google.com/maps/@/data=!4m2!10m1!1e1?entry=ttu"

	defaultSettleDelay = 2000 * time.Millisecond
	// loginMarker is the account avatar in the Google bar, only rendered when signed in.
	loginMarker = "img.gb_p"
)

type DriverOption func(*Driver)

// Driver imports saved places from Google Maps through a ContentWindow.
type Driver struct {
	log         *slog.Logger
	settleDelay time.Duration
	bounds      BoundingBox
}

func NewDriver(opts ...DriverOption) *Driver {
	d := Driver{
		log:         slog.Default(),
		settleDelay: defaultSettleDelay,
		bounds:      KoreaBounds,
	}

	for _, opt := range opts {
		opt(&d)
	}

	return &d
}

func WithLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithSettleDelay overrides the pause between preload and the first script.
func WithSettleDelay(delay time.Duration) DriverOption {
	return func(d *Driver) {
		if delay >= 0 {
			d.settleDelay = delay
		}
	}
}

// WithBounds replaces the Korea bounding box used to keep items.
func WithBounds(b BoundingBox) DriverOption {
	return func(d *Driver) {
		d.bounds = b
	}
}

func (d *Driver) Label() string {
	return "구글맵"
}

// Import loads the saved places of the signed-in account. Folders without any
// item inside the bounding box are left out. The result is all or nothing.
func (d *Driver) Import(ctx context.Context, w ContentWindow) ([]favorites.Folder, error) {
	ready := make(chan struct{}, 1)

	var once sync.Once

	unsubscribe := w.OnDOMReady(func() {
		select {
		case ready <- struct{}{}:
		default:
		}
	})

	if unsubscribe == nil {
		unsubscribe = func() {}
	}

	release := func() { once.Do(unsubscribe) }

	defer func() {
		if err := w.HideLoading(context.WithoutCancel(ctx)); err != nil {
			d.log.Warn("failed to hide loading indicator", "error", err)
		}

		release()
	}()

	if err := w.LoadURL(ctx, EntryURL); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", EntryURL, err)
	}

	select {
	case <-ready:
		release()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if err := d.waitReady(ctx, w); err != nil {
		return nil, err
	}

	if err := d.checkLogin(ctx, w); err != nil {
		return nil, err
	}

	if err := w.ShowLoading(ctx); err != nil {
		return nil, fmt.Errorf("failed to show loading indicator: %w", err)
	}

	folders, err := d.collect(ctx, w)
	if err != nil {
		return nil, err
	}

	d.log.Info("favorites imported", "driver", d.Label(), "folders", len(folders))

	return folders, nil
}

// Export is not supported by this driver.
func (d *Driver) Export(_ context.Context, _ ContentWindow, _ []favorites.Folder) ([]favorites.Folder, error) {
	return nil, ErrNotImplemented
}

// View is not supported by this driver.
func (d *Driver) View(_ context.Context, _ ContentWindow, _ favorites.FailedItem) error {
	return ErrNotImplemented
}

// waitReady lets the page finish its own bootstrap before we run scripts in it.
func (d *Driver) waitReady(ctx context.Context, w ContentWindow) error {
	if err := w.WaitForPreload(ctx); err != nil {
		return fmt.Errorf("failed waiting for preload: %w", err)
	}

	if d.settleDelay <= 0 {
		return nil
	}

	t := time.NewTimer(d.settleDelay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) checkLogin(ctx context.Context, b PageBridge) error {
	script := fmt.Sprintf("String(Boolean(document.querySelector(%q)))", loginMarker)

	out, err := b.ExecuteJavaScript(ctx, script)
	if err != nil {
		return fmt.Errorf("failed to check login: %w", err)
	}

	if out != "true" {
		return ErrAuthenticationRequired
	}

	return nil
}

func (d *Driver) collect(ctx context.Context, b PageBridge) ([]favorites.Folder, error) {
	descriptors, err := d.getFolders(ctx, b)
	if err != nil {
		return nil, err
	}

	result := make([]favorites.Folder, 0, len(descriptors))

	for _, fd := range descriptors {
		items, err := d.getItemsBelongToFolder(ctx, b, fd.ID)
		if err != nil {
			return nil, err
		}

		if len(items) == 0 {
			d.log.Debug("skipping folder without items", "folder", fd.Name)
			continue
		}

		result = append(result, favorites.Folder{Name: fd.Name, Items: items})
	}

	return result, nil
}

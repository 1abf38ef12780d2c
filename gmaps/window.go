package gmaps

import (
	"context"
	"encoding/json"
)

// PageBridge runs a script inside the loaded page and returns its resolved
// value as text. Requests issued this way carry the page's own session.
type PageBridge interface {
	ExecuteJavaScript(ctx context.Context, script string) (string, error)
}

// ContentWindow is the browser view the driver operates on.
type ContentWindow interface {
	PageBridge

	// WaitForPreload blocks until the view's preload script has run.
	WaitForPreload(ctx context.Context) error
	LoadURL(ctx context.Context, url string) error
	// OnDOMReady registers fn for the page's DOMContentLoaded event and
	// returns a function that removes exactly that registration.
	OnDOMReady(fn func()) (unsubscribe func())
	ShowLoading(ctx context.Context) error
	HideLoading(ctx context.Context) error
}

// fetchScript builds an in-page GET through the request proxy the view exposes.
func fetchScript(url string) string {
	quoted, _ := json.Marshal(url)

	return `__Bridge.fetch({method: 'GET', url: ` + string(quoted) + `}).then(r => r.data)`
}

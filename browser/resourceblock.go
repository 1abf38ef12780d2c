package browser

// evaluator is the subset of a page both playwright and scrapemate expose.
type evaluator interface {
	Eval(js string, args ...any) (any, error)
}

const stripStylesScript = `() => {
	document.querySelectorAll('link[rel="stylesheet"], style').forEach(el => el.remove());
	return true;
}`

// blockUnnecessaryResources removes the stylesheets of the current document.
// The import only talks to JSON endpoints, so styling is wasted bandwidth on
// the hidden view. Errors are ignored: a styled page works the same.
func blockUnnecessaryResources(page evaluator) {
	_, _ = page.Eval(stripStylesScript)
}

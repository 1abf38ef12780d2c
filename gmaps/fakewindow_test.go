package gmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// fakeWindow answers scripts from canned bodies and records what the driver did.
type fakeWindow struct {
	mu sync.Mutex

	loggedIn    bool
	folders     string
	items       map[string]string
	scriptErr   map[string]error
	loadErr     error
	preloadErr  error
	noDOMReady  bool
	asyncReady  bool
	subscribers map[int]func()
	nextSub     int

	calls   []string
	scripts []string
	loading bool
}

func newFakeWindow() *fakeWindow {
	return &fakeWindow{
		loggedIn:    true,
		items:       map[string]string{},
		scriptErr:   map[string]error{},
		subscribers: map[int]func(){},
	}
}

func (f *fakeWindow) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *fakeWindow) WaitForPreload(context.Context) error {
	f.record("preload")
	return f.preloadErr
}

func (f *fakeWindow) LoadURL(_ context.Context, url string) error {
	f.record("load " + url)

	if f.loadErr != nil {
		return f.loadErr
	}

	if f.noDOMReady {
		return nil
	}

	f.mu.Lock()
	handlers := make([]func(), 0, len(f.subscribers))
	for _, h := range f.subscribers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		if f.asyncReady {
			go h()
		} else {
			h()
		}
	}

	return nil
}

func (f *fakeWindow) OnDOMReady(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	f.subscribers[id] = fn
	f.calls = append(f.calls, "subscribe")

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		delete(f.subscribers, id)
		f.calls = append(f.calls, "unsubscribe")
	}
}

func (f *fakeWindow) ShowLoading(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loading = true
	f.calls = append(f.calls, "show")

	return nil
}

func (f *fakeWindow) HideLoading(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.loading = false
	f.calls = append(f.calls, "hide")

	return nil
}

func (f *fakeWindow) ExecuteJavaScript(_ context.Context, script string) (string, error) {
	f.mu.Lock()
	f.scripts = append(f.scripts, script)
	f.mu.Unlock()

	for key, err := range f.scriptErr {
		if strings.Contains(script, key) {
			return "", err
		}
	}

	switch {
	case strings.Contains(script, "document.querySelector"):
		return fmt.Sprint(f.loggedIn), nil
	case strings.Contains(script, "locationhistory/preview/mas"):
		return f.folders, nil
	case strings.Contains(script, "entitylist/getlist"):
		for id, body := range f.items {
			if strings.Contains(script, "!1s"+id+"!") {
				return body, nil
			}
		}

		return envelopePrefix + `[]`, nil
	}

	return "", fmt.Errorf("unexpected script %q", script)
}

func (f *fakeWindow) activeSubscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subscribers)
}

func (f *fakeWindow) has(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.calls {
		if c == call {
			return true
		}
	}

	return false
}

type rawFolder struct {
	id   string
	name string
}

// folderBody renders a folder list response; an empty id renders the
// id-less shape the service uses for empty folders.
func folderBody(folders ...rawFolder) string {
	entries := make([]any, 0, len(folders))
	for _, f := range folders {
		head := []any{nil}
		if f.id != "" {
			head = append(head, f.id)
		}

		entries = append(entries, []any{head, f.name})
	}

	root := make([]any, 30)
	root[29] = []any{entries}

	b, _ := json.Marshal(root)

	return envelopePrefix + string(b)
}

type rawItem struct {
	name string
	desc any
	lat  any
	lng  any
}

func itemBody(items ...rawItem) string {
	entries := make([]any, 0, len(items))
	for _, it := range items {
		coords := []any{nil, nil, it.lat, it.lng}
		entries = append(entries, []any{
			nil,
			[]any{nil, nil, nil, nil, nil, coords},
			it.name,
			it.desc,
		})
	}

	head := make([]any, 9)
	head[8] = entries

	b, _ := json.Marshal([]any{head})

	return envelopePrefix + string(b)
}

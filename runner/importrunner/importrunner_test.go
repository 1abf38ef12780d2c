package importrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/gmaps"
	"github.com/gosom/gmaps-favorites/history"
	"github.com/gosom/gmaps-favorites/runner"
	"github.com/gosom/gmaps-favorites/store/sqlite"
	"github.com/gosom/gmaps-favorites/writers"
)

const prefix = ")]}'\n"

type stubWindow struct {
	mu       sync.Mutex
	loggedIn bool
	handlers []func()
	closed   bool
}

func (w *stubWindow) WaitForPreload(context.Context) error { return nil }

func (w *stubWindow) LoadURL(context.Context, string) error {
	w.mu.Lock()
	handlers := append([]func(){}, w.handlers...)
	w.mu.Unlock()

	for _, h := range handlers {
		h()
	}

	return nil
}

func (w *stubWindow) OnDOMReady(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.handlers = append(w.handlers, fn)

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()

		w.handlers = nil
	}
}

func (w *stubWindow) ShowLoading(context.Context) error { return nil }
func (w *stubWindow) HideLoading(context.Context) error { return nil }

func (w *stubWindow) ExecuteJavaScript(_ context.Context, script string) (string, error) {
	switch {
	case strings.Contains(script, "document.querySelector"):
		if w.loggedIn {
			return "true", nil
		}

		return "false", nil
	case strings.Contains(script, "locationhistory/preview/mas"):
		root := make([]any, 30)
		root[29] = []any{[]any{[]any{[]any{nil, "f1"}, "맛집"}}}

		return encode(root), nil
	case strings.Contains(script, "entitylist/getlist"):
		head := make([]any, 9)
		head[8] = []any{
			[]any{nil, []any{nil, nil, nil, nil, nil, []any{nil, nil, 37.5665, 126.978}}, "Seoul Cafe", "good coffee"},
			[]any{nil, []any{nil, nil, nil, nil, nil, []any{nil, nil, 35.68, 139.76}}, "Tokyo", nil},
		}

		return encode([]any{head}), nil
	}

	return "", errors.New("unexpected script")
}

func encode(v any) string {
	b, _ := json.Marshal(v)
	return prefix + string(b)
}

func newTestRunner(t *testing.T, w *stubWindow) (*importrunner, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	out := &bytes.Buffer{}

	r := &importrunner{
		cfg: &runner.Config{
			DataFolder: dir,
			Engine:     runner.EnginePlaywright,
			Timeout:    time.Minute,
		},
		driver: gmaps.NewDriver(gmaps.WithSettleDelay(0)),
		out:    out,
		now:    time.Now,
		open: func(context.Context) (gmaps.ContentWindow, func() error, error) {
			return w, func() error {
				w.closed = true
				return nil
			}, nil
		},
	}

	r.writers = []writers.ResultWriter{&writers.JSONWriter{Dir: dir}}

	return r, out
}

func TestRunWritesImport(t *testing.T) {
	w := &stubWindow{loggedIn: true}
	r, out := newTestRunner(t, w)

	repo, err := sqlite.New(filepath.Join(r.cfg.DataFolder, "history.db"))
	require.NoError(t, err)

	r.repos = append(r.repos, repo)
	r.writers = append(r.writers, history.NewService(repo, r.cfg.DataFolder))

	require.NoError(t, r.Run(context.Background()))
	require.True(t, w.closed)

	summaries, err := repo.Select(context.Background(), history.SelectParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "구글맵", summaries[0].Source)
	require.Equal(t, 1, summaries[0].Folders)
	require.Equal(t, 1, summaries[0].Items)

	id := summaries[0].ID

	data, err := os.ReadFile(filepath.Join(r.cfg.DataFolder, id+".json"))
	require.NoError(t, err)

	var written favorites.Import
	require.NoError(t, json.Unmarshal(data, &written))
	require.Equal(t, id, written.ID)
	require.Equal(t, []favorites.Folder{{
		Name: "맛집",
		Items: []favorites.Item{
			{Name: "Seoul Cafe", Description: "good coffee", LatLng: favorites.LatLng{Lat: 37.5665, Lng: 126.978}},
		},
	}}, written.Folders)

	stored, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, written.Folders, stored.Folders)

	require.Contains(t, out.String(), "맛집")
	require.Contains(t, out.String(), "TOTAL")

	require.NoError(t, r.Close(context.Background()))
}

func TestRunRequiresLogin(t *testing.T) {
	w := &stubWindow{}
	r, out := newTestRunner(t, w)

	err := r.Run(context.Background())
	require.ErrorIs(t, err, gmaps.ErrAuthenticationRequired)
	require.True(t, w.closed)
	require.Empty(t, out.String())

	entries, err := os.ReadDir(r.cfg.DataFolder)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunOpenFailure(t *testing.T) {
	r, _ := newTestRunner(t, &stubWindow{})
	r.open = func(context.Context) (gmaps.ContentWindow, func() error, error) {
		return nil, nil, errors.New("no browser")
	}

	require.EqualError(t, r.Run(context.Background()), "no browser")
}

func TestRunStdoutSkipsSummary(t *testing.T) {
	w := &stubWindow{loggedIn: true}
	r, out := newTestRunner(t, w)
	r.cfg.Stdout = true
	r.writers = []writers.ResultWriter{&writers.JSONWriter{Out: out}}

	require.NoError(t, r.Run(context.Background()))
	require.NotContains(t, out.String(), "TOTAL")
	require.Contains(t, out.String(), "Seoul Cafe")
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, "authentication_required", errorKind(gmaps.ErrAuthenticationRequired))
	require.Equal(t, "no_favorites", errorKind(gmaps.ErrNoFavoritesFound))
	require.Equal(t, "timeout", errorKind(context.DeadlineExceeded))
	require.Equal(t, "other", errorKind(errors.New("boom")))
}

func TestNewRequiresDataFolder(t *testing.T) {
	_, err := New(context.Background(), &runner.Config{})
	require.Error(t, err)
}

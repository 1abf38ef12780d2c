package gmaps

import (
	"context"
	"testing"

	"github.com/gosom/scrapemate"
	"github.com/stretchr/testify/require"

	"github.com/gosom/gmaps-favorites/favorites"
)

func TestFavoritesJobDefaults(t *testing.T) {
	called := false
	job := NewFavoritesJob(newTestDriver(), WithFavoritesJobDone(func() { called = true }))

	require.NotEmpty(t, job.ID)
	require.Equal(t, EntryURL, job.URL)
	require.Equal(t, 0, job.MaxRetries)
	require.Nil(t, job.openWindow)
	require.NotNil(t, job.onDone)
	require.False(t, called)

	_, ok, err := job.Result()
	require.False(t, ok)
	require.NoError(t, err)
}

func TestFavoritesJobProcess(t *testing.T) {
	job := NewFavoritesJob(newTestDriver())

	want := []favorites.Folder{{Name: "Trips", Items: []favorites.Item{{Name: "Seoul"}}}}
	resp := scrapemate.Response{Meta: map[string]any{"folders": want}}

	got, next, err := job.Process(context.Background(), &resp)
	require.NoError(t, err)
	require.Empty(t, next)
	require.Equal(t, want, got)
	require.Nil(t, resp.Meta)
}

func TestFavoritesJobBrowserActions(t *testing.T) {
	w := newFakeWindow()
	w.folders = folderBody(rawFolder{id: "f1", name: "Trips"})
	w.items["f1"] = itemBody(rawItem{name: "Seoul", desc: "home", lat: 37.5, lng: 127.0})

	done := 0
	job := NewFavoritesJob(newTestDriver(),
		WithPageWindow(func(scrapemate.BrowserPage) ContentWindow { return w }),
		WithFavoritesJobDone(func() { done++ }),
	)

	resp := job.BrowserActions(context.Background(), nil)
	require.NoError(t, resp.Error)
	require.Equal(t, 1, done)

	folders, ok, err := job.Result()
	require.True(t, ok)
	require.NoError(t, err)
	require.Equal(t, []favorites.Folder{{
		Name:  "Trips",
		Items: []favorites.Item{{Name: "Seoul", Description: "home", LatLng: favorites.LatLng{Lat: 37.5, Lng: 127.0}}},
	}}, folders)
	require.Equal(t, folders, resp.Meta["folders"])

	requireClean(t, w)
}

func TestFavoritesJobWithoutPageWindow(t *testing.T) {
	job := NewFavoritesJob(newTestDriver())

	resp := job.BrowserActions(context.Background(), nil)
	require.Error(t, resp.Error)

	_, ok, err := job.Result()
	require.True(t, ok)
	require.Error(t, err)
}

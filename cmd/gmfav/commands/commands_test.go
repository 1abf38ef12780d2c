package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/history"
	"github.com/gosom/gmaps-favorites/store/sqlite"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

func seed(t *testing.T, dir string) {
	t.Helper()

	repo, err := sqlite.New(filepath.Join(dir, "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	start := time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(context.Background(), &favorites.Import{
		ID:         "imp-1",
		Source:     "구글맵",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Folders: []favorites.Folder{
			{Name: "맛집", Items: []favorites.Item{
				{Name: "광장시장", Description: "빈대떡", LatLng: favorites.LatLng{Lat: 37.5701, Lng: 126.9996}},
			}},
		},
	}))
}

func TestHistoryCommands(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	out, err := run(t, "--data-folder", dir, "history", "list")
	require.NoError(t, err)
	require.Contains(t, out, "imp-1")
	require.Contains(t, out, "구글맵")

	out, err = run(t, "--data-folder", dir, "history", "show", "imp-1")
	require.NoError(t, err)
	require.Contains(t, out, "광장시장")
	require.Contains(t, out, "37.570100")

	out, err = run(t, "--data-folder", dir, "history", "export", "imp-1")
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	require.Equal(t, filepath.Join(dir, "imp-1.csv"), path)
	require.FileExists(t, path)

	out, err = run(t, "--data-folder", dir, "history", "export", "imp-1", "--format", "xlsx", "--fields", "name,lat")
	require.NoError(t, err)
	require.FileExists(t, strings.TrimSpace(out))

	_, err = run(t, "--data-folder", dir, "history", "export", "imp-1", "--format", "pdf")
	require.Error(t, err)

	out, err = run(t, "--data-folder", dir, "history", "delete", "imp-1")
	require.NoError(t, err)
	require.Contains(t, out, "deleted imp-1")

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	_, err = run(t, "--data-folder", dir, "history", "show", "imp-1")
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestHistoryDisabled(t *testing.T) {
	t.Setenv("GMFAV_DISABLE_HISTORY", "true")

	_, err := run(t, "--data-folder", t.TempDir(), "history", "list")
	require.EqualError(t, err, "history is disabled")
}

func TestImportRejectsInvalidConfig(t *testing.T) {
	_, err := run(t, "--data-folder", t.TempDir(), "import", "--engine", "lynx")
	require.ErrorContains(t, err, `unknown engine "lynx"`)

	_, err = run(t, "--data-folder", t.TempDir(), "import", "--formats", "pdf")
	require.ErrorContains(t, err, `unknown output format "pdf"`)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	seed(t, dir)

	cfgPath := filepath.Join(t.TempDir(), "gmfav.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("data-folder: "+dir+"\n"), 0o644))

	out, err := run(t, "--config", cfgPath, "history", "list")
	require.NoError(t, err)
	require.Contains(t, out, "imp-1")
}

package importrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gosom/gmaps-favorites/browser"
	"github.com/gosom/gmaps-favorites/common/logger"
	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/gmaps"
	"github.com/gosom/gmaps-favorites/history"
	"github.com/gosom/gmaps-favorites/runner"
	"github.com/gosom/gmaps-favorites/store/postgres"
	"github.com/gosom/gmaps-favorites/store/sqlite"
	"github.com/gosom/gmaps-favorites/tlmt"
	"github.com/gosom/gmaps-favorites/writers"
)

// openWindow returns a ready content window and the function releasing it.
type openWindow func(ctx context.Context) (gmaps.ContentWindow, func() error, error)

type importrunner struct {
	cfg     *runner.Config
	driver  *gmaps.Driver
	writers []writers.ResultWriter
	repos   []history.Repository
	out     io.Writer
	open    openWindow
	now     func() time.Time
}

func New(ctx context.Context, cfg *runner.Config) (runner.Runner, error) {
	if cfg.DataFolder == "" {
		return nil, fmt.Errorf("data folder is required")
	}

	if err := os.MkdirAll(cfg.DataFolder, os.ModePerm); err != nil {
		return nil, err
	}

	r := importrunner{
		cfg:    cfg,
		driver: runner.NewDriver(cfg),
		out:    os.Stdout,
		now:    time.Now,
	}

	r.open = r.openPlaywright

	if err := r.setupWriters(ctx); err != nil {
		_ = r.Close(ctx)
		return nil, err
	}

	return &r, nil
}

func (r *importrunner) setupWriters(ctx context.Context) error {
	for _, f := range r.cfg.Formats {
		switch f {
		case "json":
			if r.cfg.Stdout {
				r.writers = append(r.writers, &writers.JSONWriter{Out: r.out})
			} else {
				r.writers = append(r.writers, &writers.JSONWriter{Dir: r.cfg.DataFolder})
			}
		case "csv":
			r.writers = append(r.writers, &writers.CsvWriter{Dir: r.cfg.DataFolder})
		case "xlsx":
			r.writers = append(r.writers, &writers.XLSXWriter{Dir: r.cfg.DataFolder})
		}
	}

	if !r.cfg.DisableHistory {
		repo, err := sqlite.New(r.cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}

		r.repos = append(r.repos, repo)
		r.writers = append(r.writers, history.NewService(repo, r.cfg.DataFolder))
	}

	if r.cfg.PostgresDSN != "" {
		repo, err := postgres.New(ctx, r.cfg.PostgresDSN)
		if err != nil {
			return err
		}

		r.repos = append(r.repos, repo)
		r.writers = append(r.writers, history.NewService(repo, r.cfg.DataFolder))
	}

	if r.cfg.S3Bucket != "" {
		w, err := writers.NewS3Writer(ctx, writers.S3Config{
			Bucket:    r.cfg.S3Bucket,
			Prefix:    r.cfg.S3Prefix,
			Region:    r.cfg.S3Region,
			AccessKey: r.cfg.S3AccessKey,
			SecretKey: r.cfg.S3SecretKey,
		})
		if err != nil {
			return err
		}

		r.writers = append(r.writers, w)
	}

	if r.cfg.WriterPluginDir != "" {
		w, err := runner.LoadCustomWriter(r.cfg.WriterPluginDir, r.cfg.WriterPluginName)
		if err != nil {
			return err
		}

		r.writers = append(r.writers, w)
	}

	return nil
}

func (r *importrunner) Run(ctx context.Context) error {
	t0 := r.now().UTC()

	imp, err := r.importFavorites(ctx)

	params := map[string]any{
		"engine":   r.cfg.Engine,
		"duration": r.now().UTC().Sub(t0).String(),
	}

	if err != nil {
		params["error"] = errorKind(err)
		_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("import", params))

		logger.Error("import failed", "error", err)

		return err
	}

	params["folders"] = len(imp.Folders)
	params["items"] = imp.ItemCount()
	_ = runner.Telemetry().Send(ctx, tlmt.NewEvent("import", params))

	if err := r.write(ctx, imp); err != nil {
		return err
	}

	logger.Info("import finished", "import_id", imp.ID, "folders", len(imp.Folders), "items", imp.ItemCount())

	if r.cfg.Stdout {
		return nil
	}

	return printSummary(r.out, imp)
}

func (r *importrunner) Close(context.Context) error {
	var errs []error

	for _, repo := range r.repos {
		errs = append(errs, repo.Close())
	}

	r.repos = nil

	return errors.Join(errs...)
}

func (r *importrunner) importFavorites(ctx context.Context) (*favorites.Import, error) {
	imp := favorites.Import{
		ID:        uuid.New().String(),
		Source:    r.driver.Label(),
		StartedAt: r.now().UTC(),
	}

	importCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	var (
		folders []favorites.Folder
		err     error
	)

	if r.cfg.Engine == runner.EngineScrapemate {
		folders, err = r.runScrapemate(importCtx)
	} else {
		folders, err = r.runWindow(importCtx)
	}

	if err != nil {
		return nil, err
	}

	imp.FinishedAt = r.now().UTC()
	imp.Folders = folders

	return &imp, nil
}

type accountReporter interface {
	Account(ctx context.Context) (string, bool, error)
}

func (r *importrunner) runWindow(ctx context.Context) ([]favorites.Folder, error) {
	w, release, err := r.open(ctx)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := release(); err != nil {
			logger.Warn("failed to close browser", "error", err)
		}
	}()

	folders, err := r.driver.Import(ctx, w)
	if err != nil {
		return nil, err
	}

	if ar, ok := w.(accountReporter); ok {
		if label, signed, err := ar.Account(ctx); err == nil && signed {
			logger.Info("imported account", "account", label)
		}
	}

	return folders, nil
}

func (r *importrunner) openPlaywright(context.Context) (gmaps.ContentWindow, func() error, error) {
	w, err := browser.NewPlaywrightWindow(browser.PlaywrightOptions{
		ProfileDir:      r.cfg.ProfileDir,
		Headless:        r.cfg.Headless,
		BlockResources:  r.cfg.BlockResources,
		InstallBrowsers: r.cfg.InstallBrowsers,
	})
	if err != nil {
		return nil, nil, err
	}

	return w, w.Close, nil
}

// write hands the import to every writer concurrently. All writers run to
// completion; the first error is returned.
func (r *importrunner) write(ctx context.Context, imp *favorites.Import) error {
	var egroup errgroup.Group

	for _, w := range r.writers {
		egroup.Go(func() error {
			if err := w.Write(ctx, imp); err != nil {
				return fmt.Errorf("%T: %w", w, err)
			}

			return nil
		})
	}

	return egroup.Wait()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, gmaps.ErrAuthenticationRequired):
		return "authentication_required"
	case errors.Is(err, gmaps.ErrNoFavoritesFound):
		return "no_favorites"
	case errors.Is(err, gmaps.ErrMalformedEnvelope):
		return "malformed_envelope"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}

func printSummary(out io.Writer, imp *favorites.Import) error {
	rows := make([][]string, 0, len(imp.Folders)+1)
	for _, f := range imp.Folders {
		rows = append(rows, []string{f.Name, strconv.Itoa(len(f.Items))})
	}

	rows = append(rows, []string{"TOTAL", strconv.Itoa(imp.ItemCount())})

	if _, err := fmt.Fprintf(out, "import %s (%s)\n", imp.ID, imp.Duration().Round(time.Millisecond)); err != nil {
		return err
	}

	return runner.PrintTable(out, []string{"FOLDER", "ITEMS"}, rows)
}

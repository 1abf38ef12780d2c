package importrunner

import (
	"context"
	"errors"
	"fmt"

	"github.com/gosom/scrapemate"
	"github.com/gosom/scrapemate/scrapemateapp"

	"github.com/gosom/gmaps-favorites/common/logger"
	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/runner"
)

// runScrapemate runs the import as a single job of a scrapemate app.
func (r *importrunner) runScrapemate(ctx context.Context) ([]favorites.Folder, error) {
	mateCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	job := runner.CreateImportJob(r.cfg, r.driver, cancel)

	mate, err := r.setupMate()
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = mate.Close()
	}()

	err = mate.Start(mateCtx, job)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	folders, done, err := job.Result()
	if !done {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, fmt.Errorf("scrapemate stopped before the import ran")
	}

	return folders, err
}

func (r *importrunner) setupMate() (*scrapemateapp.ScrapemateApp, error) {
	opts := []func(*scrapemateapp.Config) error{
		scrapemateapp.WithConcurrency(1),
		scrapemateapp.WithExitOnInactivity(r.cfg.Timeout),
		scrapemateapp.WithJS(scrapemateapp.DisableImages()),
	}

	matecfg, err := scrapemateapp.NewConfig(
		[]scrapemate.ResultWriter{drain{}},
		opts...,
	)
	if err != nil {
		return nil, err
	}

	return scrapemateapp.NewScrapeMateApp(matecfg)
}

// drain consumes scrapemate results; the job keeps its own outcome.
type drain struct{}

func (drain) Run(ctx context.Context, in <-chan scrapemate.Result) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case res, ok := <-in:
			if !ok {
				return nil
			}

			if folders, ok := res.Data.([]favorites.Folder); ok {
				logger.Debug("scrapemate result", "folders", len(folders))
			}
		}
	}
}

package gmaps

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gosom/scrapemate"

	"github.com/gosom/gmaps-favorites/favorites"
)

type FavoritesJobOptions func(*FavoritesJob)

// FavoritesJob runs the driver inside a scrapemate browser worker.
type FavoritesJob struct {
	scrapemate.Job

	driver     *Driver
	openWindow func(scrapemate.BrowserPage) ContentWindow
	onDone     func()

	mu      sync.Mutex
	done    bool
	folders []favorites.Folder
	err     error
}

func NewFavoritesJob(driver *Driver, opts ...FavoritesJobOptions) *FavoritesJob {
	job := FavoritesJob{
		Job: scrapemate.Job{
			ID:         uuid.New().String(),
			Method:     http.MethodGet,
			URL:        EntryURL,
			MaxRetries: 0,
			Priority:   scrapemate.PriorityMedium,
		},
		driver: driver,
	}

	for _, opt := range opts {
		opt(&job)
	}

	return &job
}

// WithPageWindow sets how the worker's browser page is turned into the
// window the driver runs on.
func WithPageWindow(fn func(scrapemate.BrowserPage) ContentWindow) FavoritesJobOptions {
	return func(j *FavoritesJob) {
		j.openWindow = fn
	}
}

// WithFavoritesJobDone registers a callback run once the import finished,
// successfully or not.
func WithFavoritesJobDone(fn func()) FavoritesJobOptions {
	return func(j *FavoritesJob) {
		j.onDone = fn
	}
}

func (j *FavoritesJob) BrowserActions(ctx context.Context, page scrapemate.BrowserPage) scrapemate.Response {
	var resp scrapemate.Response

	var (
		folders []favorites.Folder
		err     error
	)

	if j.openWindow == nil {
		err = errors.New("favorites job has no page window")
	} else {
		folders, err = j.driver.Import(ctx, j.openWindow(page))
	}

	j.mu.Lock()
	j.done, j.folders, j.err = true, folders, err
	j.mu.Unlock()

	if j.onDone != nil {
		defer j.onDone()
	}

	if err != nil {
		resp.Error = err
		return resp
	}

	resp.Meta = map[string]any{"folders": folders}

	return resp
}

func (j *FavoritesJob) Process(_ context.Context, resp *scrapemate.Response) (any, []scrapemate.IJob, error) {
	defer func() {
		resp.Meta = nil
	}()

	folders, _ := resp.Meta["folders"].([]favorites.Folder)

	return folders, nil, nil
}

// Result reports the outcome of the import. ok is false while the job has not run.
func (j *FavoritesJob) Result() ([]favorites.Folder, bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.folders, j.done, j.err
}

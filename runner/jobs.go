package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"

	"github.com/gosom/scrapemate"

	"github.com/gosom/gmaps-favorites/browser"
	"github.com/gosom/gmaps-favorites/common/logger"
	"github.com/gosom/gmaps-favorites/gmaps"
	"github.com/gosom/gmaps-favorites/writers"
)

// NewDriver builds the Google Maps driver from the configuration.
func NewDriver(cfg *Config) *gmaps.Driver {
	opts := []gmaps.DriverOption{
		gmaps.WithSettleDelay(cfg.SettleDelay),
	}

	if logger.Logger != nil {
		opts = append(opts, gmaps.WithLogger(logger.Logger))
	}

	return gmaps.NewDriver(opts...)
}

// CreateImportJob wraps the driver in a scrapemate job. done runs once the
// import finished.
func CreateImportJob(cfg *Config, driver *gmaps.Driver, done func()) *gmaps.FavoritesJob {
	opts := []gmaps.FavoritesJobOptions{
		gmaps.WithPageWindow(func(page scrapemate.BrowserPage) gmaps.ContentWindow {
			return browser.NewPageWindow(page, cfg.BlockResources)
		}),
	}

	if done != nil {
		opts = append(opts, gmaps.WithFavoritesJobDone(done))
	}

	return gmaps.NewFavoritesJob(driver, opts...)
}

// LoadCustomWriter loads a writers.ResultWriter exported as pluginName from
// the first Go plugin found in pluginDir.
func LoadCustomWriter(pluginDir, pluginName string) (writers.ResultWriter, error) {
	files, err := os.ReadDir(pluginDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plugin directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		if filepath.Ext(file.Name()) != ".so" && filepath.Ext(file.Name()) != ".dll" {
			continue
		}

		pluginPath := filepath.Join(pluginDir, file.Name())

		p, err := plugin.Open(pluginPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", file.Name(), err)
		}

		symWriter, err := p.Lookup(pluginName)
		if err != nil {
			return nil, fmt.Errorf("failed to lookup symbol %s: %w", pluginName, err)
		}

		writer, ok := symWriter.(*writers.ResultWriter)
		if !ok {
			return nil, fmt.Errorf("unexpected type %T from writer symbol in plugin %s", symWriter, file.Name())
		}

		return *writer, nil
	}

	return nil, fmt.Errorf("no plugin found in %s", pluginDir)
}

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosom/gmaps-favorites/favorites"
	"github.com/gosom/gmaps-favorites/writers"
)

// Service manages stored imports and the export files generated from them.
type Service struct {
	repo       Repository
	dataFolder string
}

func NewService(repo Repository, dataFolder string) *Service {
	return &Service{
		repo:       repo,
		dataFolder: dataFolder,
	}
}

// Write records imp, so the service can be used as a result writer.
func (s *Service) Write(ctx context.Context, imp *favorites.Import) error {
	return s.repo.Create(ctx, imp)
}

func (s *Service) All(ctx context.Context, limit int) ([]Summary, error) {
	return s.repo.Select(ctx, SelectParams{Limit: limit})
}

func (s *Service) Get(ctx context.Context, id string) (favorites.Import, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	for _, ext := range []string{"json", "csv", "xlsx"} {
		os.Remove(filepath.Join(s.dataFolder, id+"."+ext))
	}

	if matches, err := filepath.Glob(filepath.Join(s.dataFolder, id+"_filtered.*")); err == nil {
		for _, m := range matches {
			os.Remove(m)
		}
	}

	return s.repo.Delete(ctx, id)
}

// GetCSV returns the csv export of a stored import, generating it if missing.
func (s *Service) GetCSV(ctx context.Context, id string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	datapath := filepath.Join(s.dataFolder, id+".csv")
	if _, err := os.Stat(datapath); err == nil {
		return datapath, nil
	}

	imp, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if err := (&writers.CsvWriter{Dir: s.dataFolder}).Write(ctx, &imp); err != nil {
		return "", err
	}

	return datapath, nil
}

// GetExcel writes a stored import to an xlsx file. With fields, only those
// columns are kept and the file gets a _filtered suffix.
func (s *Service) GetExcel(ctx context.Context, id string, fields []string) (string, error) {
	if err := validateID(id); err != nil {
		return "", err
	}

	imp, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}

	name := id + ".xlsx"
	if len(fields) > 0 {
		name = id + "_filtered.xlsx"
	}

	path := filepath.Join(s.dataFolder, name)

	if err := writers.SaveSheet(path, writers.Records(&imp, fields...)); err != nil {
		return "", fmt.Errorf("failed to export %s: %w", id, err)
	}

	return path, nil
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid import id %q", id)
	}

	return nil
}

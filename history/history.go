package history

import (
	"context"
	"errors"
	"time"

	"github.com/gosom/gmaps-favorites/favorites"
)

var ErrNotFound = errors.New("import not found")

// Summary describes a stored import without its items.
type Summary struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Folders    int
	Items      int
}

type SelectParams struct {
	Limit int
}

// Repository stores finished imports. Implementations keep folder and item
// order exactly as imported.
type Repository interface {
	Create(ctx context.Context, imp *favorites.Import) error
	Get(ctx context.Context, id string) (favorites.Import, error)
	Select(ctx context.Context, params SelectParams) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func Summarize(imp *favorites.Import) Summary {
	return Summary{
		ID:         imp.ID,
		Source:     imp.Source,
		StartedAt:  imp.StartedAt,
		FinishedAt: imp.FinishedAt,
		Folders:    len(imp.Folders),
		Items:      imp.ItemCount(),
	}
}

package writers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gosom/gmaps-favorites/favorites"
)

// JSONWriter writes the folders of an import as indented JSON, either to
// <Dir>/<id>.json or to Out when set.
type JSONWriter struct {
	Dir string
	Out io.Writer
}

func (w *JSONWriter) Write(_ context.Context, imp *favorites.Import) error {
	if w.Out != nil {
		return encodeJSON(w.Out, imp)
	}

	path, err := outputPath(w.Dir, imp.ID, "json")
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create json file: %w", err)
	}
	defer f.Close()

	if err := encodeJSON(f, imp); err != nil {
		return err
	}

	return f.Close()
}

func encodeJSON(out io.Writer, imp *favorites.Import) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(imp); err != nil {
		return fmt.Errorf("failed to encode import: %w", err)
	}

	return nil
}

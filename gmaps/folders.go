package gmaps

import (
	"context"
	"fmt"
)

// FolderPageSize is the number of folders requested. Only the first page is
// read; accounts with more folders are truncated.
const FolderPageSize = 50

const folderListURL = "https://www.google.com/locationhistory/preview/mas?authuser=0&hl=ko&gl=kr" +
	"&pb=!2m3!1s_jFyZufrE6LJ0-kPrue66As!7e81!15i17409" +
	"!7m1!1i%[1]d!12m1!1i%[1]d!15m1!1i%[1]d!23m1!1i%[1]d!24m1!1i%[1]d!38m1!1i%[1]d"

// FolderDescriptor identifies a folder while its items are fetched.
type FolderDescriptor struct {
	ID   string
	Name string
}

func folderListRequest() string {
	return fetchScript(fmt.Sprintf(folderListURL, FolderPageSize))
}

func (d *Driver) getFolders(ctx context.Context, b PageBridge) ([]FolderDescriptor, error) {
	raw, err := b.ExecuteJavaScript(ctx, folderListRequest())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch folders: %w", err)
	}

	root, err := ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse folders: %w", err)
	}

	entries := folderList(root)
	folders := make([]FolderDescriptor, 0, len(entries))

	for _, entry := range entries {
		// the service drops the id of folders that hold no item
		id := folderID(entry)
		if id == "" {
			continue
		}

		folders = append(folders, FolderDescriptor{ID: id, Name: folderName(entry)})
	}

	if len(folders) == 0 {
		return nil, ErrNoFavoritesFound
	}

	d.log.Debug("folders listed", "count", len(folders), "raw", len(entries))

	return folders, nil
}

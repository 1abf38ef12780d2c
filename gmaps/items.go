package gmaps

import (
	"context"
	"fmt"

	"github.com/gosom/gmaps-favorites/favorites"
)

// ItemPageSize is the number of items requested per folder. Only the first
// page is read.
const ItemPageSize = 500

const itemListURL = "https://www.google.com/maps/preview/entitylist/getlist?authuser=0&hl=ko&gl=kr" +
	"&pb=!1m4!1s%s!2e2!3m1!1e1!2e2!3e2!4i%d!6m3!1sYityZrG1NOvg2roPxLGTiAg!7e81!28e2!16b1"

func itemListRequest(folderID string) string {
	return fetchScript(fmt.Sprintf(itemListURL, folderID, ItemPageSize))
}

func (d *Driver) getItemsBelongToFolder(ctx context.Context, b PageBridge, folderID string) ([]favorites.Item, error) {
	raw, err := b.ExecuteJavaScript(ctx, itemListRequest(folderID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items of folder %s: %w", folderID, err)
	}

	root, err := ParseResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse items of folder %s: %w", folderID, err)
	}

	entries := itemList(root)
	items := make([]favorites.Item, 0, len(entries))

	for i, entry := range entries {
		latLng, present, valid := itemLatLng(entry)
		if !present {
			return nil, fmt.Errorf("%w: item %d of folder %s has no coordinates", ErrMalformedEnvelope, i, folderID)
		}

		if !valid || !d.bounds.Contains(latLng) {
			continue
		}

		items = append(items, favorites.Item{
			Name:        itemName(entry),
			Description: itemDescription(entry),
			LatLng:      latLng,
		})
	}

	return items, nil
}

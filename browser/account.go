package browser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AccountLabel reads the signed-in account from the Google bar of a page,
// e.g. "Google Account: Jane Doe (jane@example.com)". ok is false when the
// page shows no account avatar.
func AccountLabel(html string) (label string, ok bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse page html: %w", err)
	}

	avatar := doc.Find("img.gb_p").First()
	if avatar.Length() == 0 {
		return "", false, nil
	}

	label = strings.TrimSpace(avatar.Closest("a").AttrOr("aria-label", ""))
	if label == "" {
		label = strings.TrimSpace(avatar.AttrOr("alt", ""))
	}

	return label, true, nil
}

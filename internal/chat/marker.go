package chat

import (
	"regexp"
	"strings"

	"github.com/beelyapp/beely/internal/catalog"
	"github.com/beelyapp/beely/internal/mood"
)

// markerRe matches [[CATEGORIES: a, b, c]]; an empty list is allowed.
var markerRe = regexp.MustCompile(`\[\[CATEGORIES:\s*([^\]]*)\]\]`)

// ParseCategories extracts the slugs of the first marker in text. Unknown and
// repeated slugs are dropped and at most three are kept. Text without a
// marker, or with a malformed one, yields no slugs.
func ParseCategories(text string, snap *catalog.Snapshot) []string {
	m := markerRe.FindStringSubmatch(text)
	if m == nil {
		return []string{}
	}
	parts := strings.Split(m[1], ",")
	raw := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			raw = append(raw, p)
		}
	}
	slugs := snap.Filter(raw)
	if len(slugs) > mood.MaxSuggestions {
		slugs = slugs[:mood.MaxSuggestions]
	}
	return slugs
}

// StripMarker removes every marker and trims the result.
func StripMarker(text string) string {
	return strings.TrimSpace(markerRe.ReplaceAllString(text, ""))
}

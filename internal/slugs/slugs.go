// Package slugs provides the slugification used for entity and term slugs.
package slugs

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// ComponentSlug converts a title or term name to a URL-safe slug.
// Falls back to a lowercase, dash-joined form when gosimple/slug strips everything
// (e.g. names made only of symbols).
func ComponentSlug(s string) string {
	s = strings.TrimSpace(s)
	slugged := goslug.Make(s)
	if slugged == "" {
		slugged = strings.ToLower(strings.Join(strings.Fields(s), "-"))
	}
	return slugged
}

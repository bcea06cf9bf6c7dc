package docs

import "embed"

// FS contains the Markdown guide bundled with the fshift binary.
//
//go:embed guide
var FS embed.FS

package root

import _ "embed"

// docsContent is the full documentation printed by --docs.
//
//go:embed docs.md
var docsContent string

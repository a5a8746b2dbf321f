package theme

import "embed"

// EmbeddedThemes holds the themes shipped with the binary, addressable as
// defaults/<name>.theme.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS

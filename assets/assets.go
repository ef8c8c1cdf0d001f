package assets

import "embed"

// ThemesPath is the built-in theme catalog, relative to ThemesFS.
const ThemesPath = "themes.yaml"

//go:embed themes.yaml
var ThemesFS embed.FS

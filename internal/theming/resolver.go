package theming

import "github.com/tarunkumar2005/fomi/internal/models"

// Resolve returns the effective theme for a form: the base theme from the catalog, or the
// hardcoded default when the id is unknown, with each present override partition replacing
// the base partition wholesale. Fields missing from an override partition are not inherited.
func Resolve(catalog Catalog, baseThemeID string, overrides models.ThemeOverrides) models.Theme {
	base, ok := catalog.Lookup(baseThemeID)
	if !ok {
		base = models.DefaultTheme()
	}
	return overrides.ApplyTo(base)
}

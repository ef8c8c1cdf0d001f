package theming

import "github.com/tarunkumar2005/fomi/internal/models"

// Diff returns every partition of current that differs from baseline, copied whole.
// An empty result means there is nothing to persist.
func Diff(current, baseline models.Theme) models.ThemeOverrides {
	var delta models.ThemeOverrides
	if current.Colors != baseline.Colors {
		v := current.Colors
		delta.Colors = &v
	}
	if current.Typography != baseline.Typography {
		v := current.Typography
		delta.Typography = &v
	}
	if current.Layout != baseline.Layout {
		v := current.Layout
		delta.Layout = &v
	}
	if current.Buttons != baseline.Buttons {
		v := current.Buttons
		delta.Buttons = &v
	}
	if current.InputFields != baseline.InputFields {
		v := current.InputFields
		delta.InputFields = &v
	}
	return delta
}

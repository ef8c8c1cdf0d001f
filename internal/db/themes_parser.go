package db

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tarunkumar2005/fomi/assets"
	dbgen "github.com/tarunkumar2005/fomi/internal/db/generated"
	"github.com/tarunkumar2005/fomi/internal/models"
)

type themeFile struct {
	Themes []themeEntry `yaml:"themes"`
}

type themeEntry struct {
	ID          string             `yaml:"id"`
	Default     bool               `yaml:"default"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Category    string             `yaml:"category"`
	Colors      models.Colors      `yaml:"colors"`
	Typography  models.Typography  `yaml:"typography"`
	Layout      models.Layout      `yaml:"layout"`
	Buttons     models.Buttons     `yaml:"buttons"`
	InputFields models.InputFields `yaml:"inputFields"`
}

// ParseThemesFile reads the embedded built-in themes in file order.
func ParseThemesFile() ([]models.Theme, error) {
	data, err := assets.ThemesFS.ReadFile(assets.ThemesPath)
	if err != nil {
		return nil, fmt.Errorf("open embedded themes file: %w", err)
	}
	return ParseThemes(bytes.NewReader(data))
}

// ParseThemes decodes a built-in theme file. Exactly one theme must be marked default,
// its id must be models.DefaultThemeID, and its tokens must match models.DefaultTheme().
func ParseThemes(r io.Reader) ([]models.Theme, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var file themeFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse themes file: %w", err)
	}
	if len(file.Themes) == 0 {
		return nil, fmt.Errorf("themes file defines no themes")
	}

	themes := make([]models.Theme, 0, len(file.Themes))
	seen := make(map[string]struct{}, len(file.Themes))
	defaultID := ""
	for i, entry := range file.Themes {
		if entry.ID == "" {
			return nil, fmt.Errorf("theme id missing at entry %d", i+1)
		}
		if _, ok := seen[entry.ID]; ok {
			return nil, fmt.Errorf("duplicate theme id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}

		if entry.Default {
			if defaultID != "" {
				return nil, fmt.Errorf("multiple default themes: %q and %q", defaultID, entry.ID)
			}
			defaultID = entry.ID
		}

		category := entry.Category
		if category == "" {
			category = "professional"
		}
		theme := models.Theme{
			ID:          entry.ID,
			Name:        entry.Name,
			Description: entry.Description,
			Category:    category,
			IsBuiltIn:   true,
			Scope:       models.ScopeBuiltIn,
			Colors:      entry.Colors,
			Typography:  entry.Typography,
			Layout:      entry.Layout,
			Buttons:     entry.Buttons,
			InputFields: entry.InputFields,
		}
		if err := theme.Validate(); err != nil {
			return nil, fmt.Errorf("invalid theme %q: %w", entry.ID, err)
		}
		themes = append(themes, theme)
	}

	if defaultID == "" {
		return nil, fmt.Errorf("no theme marked default")
	}
	if defaultID != models.DefaultThemeID {
		return nil, fmt.Errorf("default theme id = %q, want %q", defaultID, models.DefaultThemeID)
	}
	for _, theme := range themes {
		if theme.ID == defaultID && !theme.SameTokens(models.DefaultTheme()) {
			return nil, fmt.Errorf("default theme tokens differ from the built-in fallback")
		}
	}
	return themes, nil
}

// SeedBuiltInThemes upserts the embedded built-in themes in one transaction and returns how many were written.
func SeedBuiltInThemes(ctx context.Context, database *DB) (int, error) {
	themes, err := ParseThemesFile()
	if err != nil {
		return 0, err
	}
	err = database.RunInTx(ctx, func(tx *DB) error {
		for _, theme := range themes {
			colors, typography, layout, buttons, inputFields, err := models.EncodePartitions(theme)
			if err != nil {
				return err
			}
			if err := tx.Queries.UpsertBuiltInTheme(ctx, dbgen.UpsertBuiltInThemeParams{
				ID:          theme.ID,
				Name:        theme.Name,
				Description: theme.Description,
				Category:    theme.Category,
				Colors:      colors,
				Typography:  typography,
				Layout:      layout,
				Buttons:     buttons,
				InputFields: inputFields,
			}); err != nil {
				return fmt.Errorf("seed theme %q: %w", theme.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(themes), nil
}

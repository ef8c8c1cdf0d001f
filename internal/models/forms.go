package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	dbgen "github.com/tarunkumar2005/fomi/internal/db/generated"
)

const maxFormTitleLength = 200

type Form struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FormTheme binds a form to a base theme plus its own override record.
type FormTheme struct {
	FormID      string         `json:"formId"`
	BaseThemeID string         `json:"baseThemeId"`
	Overrides   ThemeOverrides `json:"overrides"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type FormQueries interface {
	GetForm(ctx context.Context, id string) (dbgen.Form, error)
	GetFormTheme(ctx context.Context, formID string) (dbgen.FormTheme, error)
}

func (f Form) Validate() error {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > maxFormTitleLength {
		return fmt.Errorf("title must be %d characters or fewer", maxFormTitleLength)
	}
	if f.WorkspaceID == "" {
		return fmt.Errorf("workspace is required")
	}
	if f.OwnerID == "" {
		return fmt.Errorf("owner is required")
	}
	return nil
}

func GetForm(ctx context.Context, queries FormQueries, id string) (Form, error) {
	row, err := queries.GetForm(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Form{}, ErrNotFound
		}
		return Form{}, err
	}
	return FormFromDB(row), nil
}

// GetFormTheme returns the form's binding. A form that was never themed is bound to the default theme with no overrides.
func GetFormTheme(ctx context.Context, queries FormQueries, formID string) (FormTheme, error) {
	row, err := queries.GetFormTheme(ctx, formID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FormTheme{FormID: formID, BaseThemeID: DefaultThemeID}, nil
		}
		return FormTheme{}, err
	}
	return FormThemeFromDB(row)
}

func FormFromDB(row dbgen.Form) Form {
	return Form{
		ID:          row.ID,
		WorkspaceID: row.WorkspaceID,
		OwnerID:     row.OwnerID,
		Title:       row.Title,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func FormThemeFromDB(row dbgen.FormTheme) (FormTheme, error) {
	overrides, err := decodeOverrideColumns(row.Colors, row.Typography, row.Layout, row.Buttons, row.InputFields)
	if err != nil {
		return FormTheme{}, fmt.Errorf("form %q overrides: %w", row.FormID, err)
	}
	return FormTheme{
		FormID:      row.FormID,
		BaseThemeID: row.BaseThemeID,
		Overrides:   overrides,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	// libsql reports constraint failures as plain errors.
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Maintained by hand in sqlc's output layout to match internal/db/queries.
// Running `sqlc generate -f internal/db/sqlc.yaml` replaces this file.
// source: forms.sql

package dbgen

import (
	"context"
	"database/sql"
)

const createForm = `-- name: CreateForm :one
INSERT INTO forms (id, workspace_id, owner_id, title)
VALUES (?1, ?2, ?3, ?4)
RETURNING id, workspace_id, owner_id, title, created_at, updated_at
`

type CreateFormParams struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	OwnerID     string `json:"owner_id"`
	Title       string `json:"title"`
}

func (q *Queries) CreateForm(ctx context.Context, arg CreateFormParams) (Form, error) {
	row := q.db.QueryRowContext(ctx, createForm,
		arg.ID,
		arg.WorkspaceID,
		arg.OwnerID,
		arg.Title,
	)
	var i Form
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.OwnerID,
		&i.Title,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getForm = `-- name: GetForm :one
SELECT id, workspace_id, owner_id, title, created_at, updated_at FROM forms WHERE id = ?1
`

func (q *Queries) GetForm(ctx context.Context, id string) (Form, error) {
	row := q.db.QueryRowContext(ctx, getForm, id)
	var i Form
	err := row.Scan(
		&i.ID,
		&i.WorkspaceID,
		&i.OwnerID,
		&i.Title,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getFormTheme = `-- name: GetFormTheme :one
SELECT form_id, base_theme_id, colors, typography, layout, buttons, input_fields, updated_at FROM form_themes WHERE form_id = ?1
`

func (q *Queries) GetFormTheme(ctx context.Context, formID string) (FormTheme, error) {
	row := q.db.QueryRowContext(ctx, getFormTheme, formID)
	var i FormTheme
	err := row.Scan(
		&i.FormID,
		&i.BaseThemeID,
		&i.Colors,
		&i.Typography,
		&i.Layout,
		&i.Buttons,
		&i.InputFields,
		&i.UpdatedAt,
	)
	return i, err
}

const resetFormTheme = `-- name: ResetFormTheme :exec
INSERT INTO form_themes (form_id, base_theme_id)
VALUES (?1, ?2)
ON CONFLICT (form_id) DO UPDATE SET
    base_theme_id = excluded.base_theme_id,
    colors = NULL,
    typography = NULL,
    layout = NULL,
    buttons = NULL,
    input_fields = NULL,
    updated_at = CURRENT_TIMESTAMP
`

type ResetFormThemeParams struct {
	FormID      string `json:"form_id"`
	BaseThemeID string `json:"base_theme_id"`
}

func (q *Queries) ResetFormTheme(ctx context.Context, arg ResetFormThemeParams) error {
	_, err := q.db.ExecContext(ctx, resetFormTheme, arg.FormID, arg.BaseThemeID)
	return err
}

const setFormBaseTheme = `-- name: SetFormBaseTheme :exec
INSERT INTO form_themes (form_id, base_theme_id)
VALUES (?1, ?2)
ON CONFLICT (form_id) DO UPDATE SET
    base_theme_id = excluded.base_theme_id,
    colors = NULL,
    typography = NULL,
    layout = NULL,
    buttons = NULL,
    input_fields = NULL,
    updated_at = CURRENT_TIMESTAMP
`

type SetFormBaseThemeParams struct {
	FormID      string `json:"form_id"`
	BaseThemeID string `json:"base_theme_id"`
}

func (q *Queries) SetFormBaseTheme(ctx context.Context, arg SetFormBaseThemeParams) error {
	_, err := q.db.ExecContext(ctx, setFormBaseTheme, arg.FormID, arg.BaseThemeID)
	return err
}

const upsertFormThemeOverrides = `-- name: UpsertFormThemeOverrides :exec
INSERT INTO form_themes (form_id, base_theme_id, colors, typography, layout, buttons, input_fields)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)
ON CONFLICT (form_id) DO UPDATE SET
    colors = COALESCE(excluded.colors, form_themes.colors),
    typography = COALESCE(excluded.typography, form_themes.typography),
    layout = COALESCE(excluded.layout, form_themes.layout),
    buttons = COALESCE(excluded.buttons, form_themes.buttons),
    input_fields = COALESCE(excluded.input_fields, form_themes.input_fields),
    updated_at = CURRENT_TIMESTAMP
`

type UpsertFormThemeOverridesParams struct {
	FormID      string         `json:"form_id"`
	BaseThemeID string         `json:"base_theme_id"`
	Colors      sql.NullString `json:"colors"`
	Typography  sql.NullString `json:"typography"`
	Layout      sql.NullString `json:"layout"`
	Buttons     sql.NullString `json:"buttons"`
	InputFields sql.NullString `json:"input_fields"`
}

func (q *Queries) UpsertFormThemeOverrides(ctx context.Context, arg UpsertFormThemeOverridesParams) error {
	_, err := q.db.ExecContext(ctx, upsertFormThemeOverrides,
		arg.FormID,
		arg.BaseThemeID,
		arg.Colors,
		arg.Typography,
		arg.Layout,
		arg.Buttons,
		arg.InputFields,
	)
	return err
}

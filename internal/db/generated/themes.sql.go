// Maintained by hand in sqlc's output layout to match internal/db/queries.
// Running `sqlc generate -f internal/db/sqlc.yaml` replaces this file.
// source: themes.sql

package dbgen

import (
	"context"
)

const countOwnerThemes = `-- name: CountOwnerThemes :one
SELECT COUNT(*) FROM themes
WHERE scope = ?1 AND owner_id = ?2
`

type CountOwnerThemesParams struct {
	Scope   string `json:"scope"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) CountOwnerThemes(ctx context.Context, arg CountOwnerThemesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countOwnerThemes, arg.Scope, arg.OwnerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createTheme = `-- name: CreateTheme :one
INSERT INTO themes (
    id, scope, owner_id, name, description, category,
    colors, typography, layout, buttons, input_fields
) VALUES (
    ?1, ?2, ?3, ?4, ?5, ?6,
    ?7, ?8, ?9, ?10, ?11
)
RETURNING id, scope, owner_id, name, description, category, colors, typography, layout, buttons, input_fields, created_at, updated_at
`

type CreateThemeParams struct {
	ID          string `json:"id"`
	Scope       string `json:"scope"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Colors      string `json:"colors"`
	Typography  string `json:"typography"`
	Layout      string `json:"layout"`
	Buttons     string `json:"buttons"`
	InputFields string `json:"input_fields"`
}

func (q *Queries) CreateTheme(ctx context.Context, arg CreateThemeParams) (Theme, error) {
	row := q.db.QueryRowContext(ctx, createTheme,
		arg.ID,
		arg.Scope,
		arg.OwnerID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Colors,
		arg.Typography,
		arg.Layout,
		arg.Buttons,
		arg.InputFields,
	)
	var i Theme
	err := row.Scan(
		&i.ID,
		&i.Scope,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Colors,
		&i.Typography,
		&i.Layout,
		&i.Buttons,
		&i.InputFields,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteTheme = `-- name: DeleteTheme :execrows
DELETE FROM themes
WHERE scope = ?1 AND owner_id = ?2 AND id = ?3 AND scope != 'builtin'
`

type DeleteThemeParams struct {
	Scope   string `json:"scope"`
	OwnerID string `json:"owner_id"`
	ID      string `json:"id"`
}

func (q *Queries) DeleteTheme(ctx context.Context, arg DeleteThemeParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTheme, arg.Scope, arg.OwnerID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getScopedTheme = `-- name: GetScopedTheme :one
SELECT id, scope, owner_id, name, description, category, colors, typography, layout, buttons, input_fields, created_at, updated_at FROM themes
WHERE scope = ?1 AND owner_id = ?2 AND id = ?3
`

type GetScopedThemeParams struct {
	Scope   string `json:"scope"`
	OwnerID string `json:"owner_id"`
	ID      string `json:"id"`
}

func (q *Queries) GetScopedTheme(ctx context.Context, arg GetScopedThemeParams) (Theme, error) {
	row := q.db.QueryRowContext(ctx, getScopedTheme, arg.Scope, arg.OwnerID, arg.ID)
	var i Theme
	err := row.Scan(
		&i.ID,
		&i.Scope,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Colors,
		&i.Typography,
		&i.Layout,
		&i.Buttons,
		&i.InputFields,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listBuiltInThemes = `-- name: ListBuiltInThemes :many
SELECT id, scope, owner_id, name, description, category, colors, typography, layout, buttons, input_fields, created_at, updated_at FROM themes
WHERE scope = 'builtin'
ORDER BY name
`

func (q *Queries) ListBuiltInThemes(ctx context.Context) ([]Theme, error) {
	rows, err := q.db.QueryContext(ctx, listBuiltInThemes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThemes(rows)
}

const listOwnerThemes = `-- name: ListOwnerThemes :many
SELECT id, scope, owner_id, name, description, category, colors, typography, layout, buttons, input_fields, created_at, updated_at FROM themes
WHERE scope = ?1 AND owner_id = ?2
ORDER BY name
`

type ListOwnerThemesParams struct {
	Scope   string `json:"scope"`
	OwnerID string `json:"owner_id"`
}

func (q *Queries) ListOwnerThemes(ctx context.Context, arg ListOwnerThemesParams) ([]Theme, error) {
	rows, err := q.db.QueryContext(ctx, listOwnerThemes, arg.Scope, arg.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThemes(rows)
}

func scanThemes(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Close() error
	Err() error
}) ([]Theme, error) {
	var items []Theme
	for rows.Next() {
		var i Theme
		if err := rows.Scan(
			&i.ID,
			&i.Scope,
			&i.OwnerID,
			&i.Name,
			&i.Description,
			&i.Category,
			&i.Colors,
			&i.Typography,
			&i.Layout,
			&i.Buttons,
			&i.InputFields,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTheme = `-- name: UpdateTheme :one
UPDATE themes SET
    name = ?1,
    description = ?2,
    category = ?3,
    colors = ?4,
    typography = ?5,
    layout = ?6,
    buttons = ?7,
    input_fields = ?8,
    updated_at = CURRENT_TIMESTAMP
WHERE scope = ?9 AND owner_id = ?10 AND id = ?11 AND scope != 'builtin'
RETURNING id, scope, owner_id, name, description, category, colors, typography, layout, buttons, input_fields, created_at, updated_at
`

type UpdateThemeParams struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Colors      string `json:"colors"`
	Typography  string `json:"typography"`
	Layout      string `json:"layout"`
	Buttons     string `json:"buttons"`
	InputFields string `json:"input_fields"`
	Scope       string `json:"scope"`
	OwnerID     string `json:"owner_id"`
	ID          string `json:"id"`
}

func (q *Queries) UpdateTheme(ctx context.Context, arg UpdateThemeParams) (Theme, error) {
	row := q.db.QueryRowContext(ctx, updateTheme,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Colors,
		arg.Typography,
		arg.Layout,
		arg.Buttons,
		arg.InputFields,
		arg.Scope,
		arg.OwnerID,
		arg.ID,
	)
	var i Theme
	err := row.Scan(
		&i.ID,
		&i.Scope,
		&i.OwnerID,
		&i.Name,
		&i.Description,
		&i.Category,
		&i.Colors,
		&i.Typography,
		&i.Layout,
		&i.Buttons,
		&i.InputFields,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertBuiltInTheme = `-- name: UpsertBuiltInTheme :exec
INSERT INTO themes (
    id, scope, owner_id, name, description, category,
    colors, typography, layout, buttons, input_fields
) VALUES (
    ?1, 'builtin', '', ?2, ?3, ?4,
    ?5, ?6, ?7, ?8, ?9
)
ON CONFLICT (scope, owner_id, id) DO UPDATE SET
    name = excluded.name,
    description = excluded.description,
    category = excluded.category,
    colors = excluded.colors,
    typography = excluded.typography,
    layout = excluded.layout,
    buttons = excluded.buttons,
    input_fields = excluded.input_fields,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertBuiltInThemeParams struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Colors      string `json:"colors"`
	Typography  string `json:"typography"`
	Layout      string `json:"layout"`
	Buttons     string `json:"buttons"`
	InputFields string `json:"input_fields"`
}

func (q *Queries) UpsertBuiltInTheme(ctx context.Context, arg UpsertBuiltInThemeParams) error {
	_, err := q.db.ExecContext(ctx, upsertBuiltInTheme,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Colors,
		arg.Typography,
		arg.Layout,
		arg.Buttons,
		arg.InputFields,
	)
	return err
}

// Maintained by hand in sqlc's output layout to match internal/db/queries.
// Running `sqlc generate -f internal/db/sqlc.yaml` replaces this file.

package dbgen

import (
	"context"
)

type Querier interface {
	CountOwnerThemes(ctx context.Context, arg CountOwnerThemesParams) (int64, error)
	CreateForm(ctx context.Context, arg CreateFormParams) (Form, error)
	CreateTheme(ctx context.Context, arg CreateThemeParams) (Theme, error)
	DeleteTheme(ctx context.Context, arg DeleteThemeParams) (int64, error)
	GetForm(ctx context.Context, id string) (Form, error)
	GetFormTheme(ctx context.Context, formID string) (FormTheme, error)
	GetScopedTheme(ctx context.Context, arg GetScopedThemeParams) (Theme, error)
	ListBuiltInThemes(ctx context.Context) ([]Theme, error)
	ListOwnerThemes(ctx context.Context, arg ListOwnerThemesParams) ([]Theme, error)
	ResetFormTheme(ctx context.Context, arg ResetFormThemeParams) error
	SetFormBaseTheme(ctx context.Context, arg SetFormBaseThemeParams) error
	UpdateTheme(ctx context.Context, arg UpdateThemeParams) (Theme, error)
	UpsertBuiltInTheme(ctx context.Context, arg UpsertBuiltInThemeParams) error
	UpsertFormThemeOverrides(ctx context.Context, arg UpsertFormThemeOverridesParams) error
}

var _ Querier = (*Queries)(nil)

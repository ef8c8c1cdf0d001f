// Maintained by hand in sqlc's output layout to match internal/db/queries.
// Running `sqlc generate -f internal/db/sqlc.yaml` replaces this file.

package dbgen

import (
	"database/sql"
	"time"
)

type Form struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FormTheme struct {
	FormID      string         `json:"form_id"`
	BaseThemeID string         `json:"base_theme_id"`
	Colors      sql.NullString `json:"colors"`
	Typography  sql.NullString `json:"typography"`
	Layout      sql.NullString `json:"layout"`
	Buttons     sql.NullString `json:"buttons"`
	InputFields sql.NullString `json:"input_fields"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Theme struct {
	ID          string    `json:"id"`
	Scope       string    `json:"scope"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Colors      string    `json:"colors"`
	Typography  string    `json:"typography"`
	Layout      string    `json:"layout"`
	Buttons     string    `json:"buttons"`
	InputFields string    `json:"input_fields"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

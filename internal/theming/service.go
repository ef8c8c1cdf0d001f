package theming

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/models"
)

const (
	// DefaultMaxThemesPerOwner caps custom themes per user or workspace.
	DefaultMaxThemesPerOwner = 1000

	customCategory     = "custom"
	duplicateNameHead  = "Copy of "
	maxThemeNameLength = 100
)

// ThemeStore is the persistence the theme library needs.
type ThemeStore interface {
	CatalogStore
	GetTheme(ctx context.Context, scope models.Scope, ownerID, id string) (models.Theme, error)
	CountOwnerThemes(ctx context.Context, scope models.Scope, ownerID string) (int64, error)
	CreateTheme(ctx context.Context, theme models.Theme) (models.Theme, error)
	UpdateTheme(ctx context.Context, theme models.Theme) (models.Theme, error)
	DeleteTheme(ctx context.Context, scope models.Scope, ownerID, id string) error
}

// Service manages the custom theme library of a session: create, update, duplicate, delete,
// import and export. Built-in themes are visible but never modified.
type Service struct {
	store       ThemeStore
	maxPerOwner int
	newID       func() string
}

func NewService(store ThemeStore, maxPerOwner int) *Service {
	if maxPerOwner <= 0 {
		maxPerOwner = DefaultMaxThemesPerOwner
	}
	return &Service{store: store, maxPerOwner: maxPerOwner, newID: uuid.NewString}
}

// ListThemes loads the session's catalog.
func (s *Service) ListThemes(ctx context.Context, session Session) (Catalog, error) {
	if err := session.Validate(); err != nil {
		return Catalog{}, err
	}
	return LoadCatalog(ctx, s.store, session)
}

// GetTheme looks id up with the same precedence as Catalog.Combined: user, then workspace, then built-in.
func (s *Service) GetTheme(ctx context.Context, session Session, id string) (models.Theme, error) {
	if err := session.Validate(); err != nil {
		return models.Theme{}, err
	}
	lookups := []struct {
		scope models.Scope
		owner string
	}{
		{models.ScopeUser, session.UserID},
		{models.ScopeWorkspace, session.WorkspaceID},
		{models.ScopeBuiltIn, ""},
	}
	for _, lookup := range lookups {
		theme, err := s.store.GetTheme(ctx, lookup.scope, lookup.owner, id)
		if err == nil {
			return theme, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.Theme{}, err
		}
	}
	return models.Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
}

// CreateTheme stores theme as a new custom theme in scope, owned by the session's user or workspace.
// Id, owner and category are assigned here; anything the caller set for them is ignored.
func (s *Service) CreateTheme(ctx context.Context, session Session, scope models.Scope, theme models.Theme) (models.Theme, error) {
	if err := session.Validate(); err != nil {
		return models.Theme{}, err
	}
	owner, err := ownerFor(session, scope)
	if err != nil {
		return models.Theme{}, err
	}

	count, err := s.store.CountOwnerThemes(ctx, scope, owner)
	if err != nil {
		return models.Theme{}, err
	}
	if count >= int64(s.maxPerOwner) {
		return models.Theme{}, fmt.Errorf("%w: %d %s themes", ErrThemeLimit, s.maxPerOwner, scope)
	}

	theme.ID = s.newID()
	theme.Scope = scope
	theme.OwnerID = owner
	theme.IsBuiltIn = false
	theme.Category = customCategory
	if err := theme.Validate(); err != nil {
		return models.Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}

	created, err := s.store.CreateTheme(ctx, theme)
	if err != nil {
		return models.Theme{}, err
	}
	log.Ctx(ctx).Info().
		Str("theme_id", created.ID).
		Str("scope", string(scope)).
		Str("owner_id", owner).
		Msg("Created custom theme")
	return created, nil
}

// UpdateTheme replaces the name, description and tokens of a custom theme the session owns.
func (s *Service) UpdateTheme(ctx context.Context, session Session, id string, theme models.Theme) (models.Theme, error) {
	existing, err := s.ownedTheme(ctx, session, id)
	if err != nil {
		return models.Theme{}, err
	}

	existing.Name = theme.Name
	existing.Description = theme.Description
	existing.Colors = theme.Colors
	existing.Typography = theme.Typography
	existing.Layout = theme.Layout
	existing.Buttons = theme.Buttons
	existing.InputFields = theme.InputFields
	if err := existing.Validate(); err != nil {
		return models.Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}

	updated, err := s.store.UpdateTheme(ctx, existing)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
		}
		return models.Theme{}, err
	}
	return updated, nil
}

// DuplicateTheme copies any visible theme into the session user's library.
// An empty name becomes "Copy of <source name>".
func (s *Service) DuplicateTheme(ctx context.Context, session Session, id, name string) (models.Theme, error) {
	source, err := s.GetTheme(ctx, session, id)
	if err != nil {
		return models.Theme{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = duplicateName(source.Name)
	}
	copied := source
	copied.Name = name
	return s.CreateTheme(ctx, session, models.ScopeUser, copied)
}

// DeleteTheme removes a custom theme the session owns. Forms bound to it resolve to the default theme afterwards.
func (s *Service) DeleteTheme(ctx context.Context, session Session, id string) error {
	existing, err := s.ownedTheme(ctx, session, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTheme(ctx, existing.Scope, existing.OwnerID, existing.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrThemeNotFound, id)
		}
		return err
	}
	log.Ctx(ctx).Info().
		Str("theme_id", id).
		Str("scope", string(existing.Scope)).
		Msg("Deleted custom theme")
	return nil
}

// ImportTheme decodes an exported theme document and stores it as a new user theme.
func (s *Service) ImportTheme(ctx context.Context, session Session, data []byte) (models.Theme, error) {
	theme, err := models.DecodeExportedTheme(data)
	if err != nil {
		return models.Theme{}, err
	}
	return s.CreateTheme(ctx, session, models.ScopeUser, theme)
}

// ExportTheme renders a visible theme as an indented, portable JSON document.
func (s *Service) ExportTheme(ctx context.Context, session Session, id string) ([]byte, error) {
	theme, err := s.GetTheme(ctx, session, id)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(models.ExportTheme(theme), "", "  ")
}

// ownedTheme finds a custom theme the session may modify, preferring the user's own.
func (s *Service) ownedTheme(ctx context.Context, session Session, id string) (models.Theme, error) {
	if err := session.Validate(); err != nil {
		return models.Theme{}, err
	}
	for _, scope := range []models.Scope{models.ScopeUser, models.ScopeWorkspace} {
		owner, _ := ownerFor(session, scope)
		theme, err := s.store.GetTheme(ctx, scope, owner, id)
		if err == nil {
			return theme, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return models.Theme{}, err
		}
	}
	if _, err := s.store.GetTheme(ctx, models.ScopeBuiltIn, "", id); err == nil {
		return models.Theme{}, fmt.Errorf("%w: %s", ErrBuiltInReadOnly, id)
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.Theme{}, err
	}
	return models.Theme{}, fmt.Errorf("%w: %s", ErrThemeNotFound, id)
}

func ownerFor(session Session, scope models.Scope) (string, error) {
	switch scope {
	case models.ScopeUser:
		return session.UserID, nil
	case models.ScopeWorkspace:
		return session.WorkspaceID, nil
	case models.ScopeBuiltIn:
		return "", ErrBuiltInReadOnly
	default:
		return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidTheme, scope)
	}
}

func duplicateName(source string) string {
	name := duplicateNameHead + source
	for utf8.RuneCountInString(name) > maxThemeNameLength {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return strings.TrimRight(name, " ")
}

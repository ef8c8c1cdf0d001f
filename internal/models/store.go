package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/tarunkumar2005/fomi/internal/cache"
	dbgen "github.com/tarunkumar2005/fomi/internal/db/generated"
)

const (
	builtInCacheKey    = "themes:builtin"
	defaultCatalogTTL  = 5 * time.Minute
	ownerCacheKeyShape = "themes:%s:%s"
)

// Store is the persistence gateway for themes and form theme bindings.
// Theme lists are read through the cache when one is configured.
type Store struct {
	queries dbgen.Querier
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group

	// genMu guards gens, bumped on every invalidation. A load only fills the cache when the
	// generation of its key did not move while it ran.
	genMu sync.Mutex
	gens  map[string]uint64
}

// NewStore returns a Store over queries. A nil cache disables list caching.
func NewStore(queries dbgen.Querier, c cache.Cache, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &Store{queries: queries, cache: c, ttl: ttl, gens: make(map[string]uint64)}
}

func ownerCacheKey(scope Scope, ownerID string) string {
	return fmt.Sprintf(ownerCacheKeyShape, scope, ownerID)
}

func (s *Store) ListBuiltInThemes(ctx context.Context) ([]Theme, error) {
	return s.cachedList(ctx, builtInCacheKey, func(ctx context.Context) ([]Theme, error) {
		return GetBuiltInThemes(ctx, s.queries)
	})
}

// ListOwnerThemes lists the custom themes of one workspace or user.
func (s *Store) ListOwnerThemes(ctx context.Context, scope Scope, ownerID string) ([]Theme, error) {
	if scope == ScopeBuiltIn {
		return s.ListBuiltInThemes(ctx)
	}
	if ownerID == "" {
		return []Theme{}, nil
	}
	return s.cachedList(ctx, ownerCacheKey(scope, ownerID), func(ctx context.Context) ([]Theme, error) {
		return GetOwnerThemes(ctx, s.queries, scope, ownerID)
	})
}

func (s *Store) ListUserThemes(ctx context.Context, userID string) ([]Theme, error) {
	return s.ListOwnerThemes(ctx, ScopeUser, userID)
}

func (s *Store) ListWorkspaceThemes(ctx context.Context, workspaceID string) ([]Theme, error) {
	return s.ListOwnerThemes(ctx, ScopeWorkspace, workspaceID)
}

func (s *Store) cachedList(ctx context.Context, key string, load func(context.Context) ([]Theme, error)) ([]Theme, error) {
	if s.cache != nil {
		var cached []Theme
		err := cache.GetJSON(ctx, s.cache, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Theme cache read failed")
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// The load is shared by every waiter, so one caller going away must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)
		gen := s.generation(key)
		themes, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		s.fill(loadCtx, key, gen, themes)
		return themes, nil
	})
	if err != nil {
		return nil, err
	}
	themes := v.([]Theme)
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out, nil
}

func (s *Store) generation(key string) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gens[key]
}

// fill caches themes under key unless key was invalidated after the load began.
func (s *Store) fill(ctx context.Context, key string, gen uint64, themes []Theme) {
	if s.cache == nil {
		return
	}
	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gens[key] != gen {
		log.Ctx(ctx).Debug().Str("key", key).Msg("Skipped caching a theme list invalidated during its load")
		return
	}
	if err := cache.SetJSON(ctx, s.cache, key, themes, s.ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("Theme cache write failed")
	}
}

func (s *Store) invalidate(ctx context.Context, keys ...string) {
	s.genMu.Lock()
	for _, key := range keys {
		s.gens[key]++
		s.group.Forget(key)
	}
	s.genMu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Strs("keys", keys).Msg("Theme cache invalidation failed")
	}
}

// InvalidateBuiltIn drops the cached built-in list, e.g. after seeding.
func (s *Store) InvalidateBuiltIn(ctx context.Context) {
	s.invalidate(ctx, builtInCacheKey)
}

// GetTheme loads one theme. Returns ErrNotFound when no row matches.
func (s *Store) GetTheme(ctx context.Context, scope Scope, ownerID, id string) (Theme, error) {
	row, err := s.queries.GetScopedTheme(ctx, dbgen.GetScopedThemeParams{
		Scope:   string(scope),
		OwnerID: ownerID,
		ID:      id,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Theme{}, ErrNotFound
		}
		return Theme{}, err
	}
	return ThemeFromDB(row)
}

func (s *Store) CountOwnerThemes(ctx context.Context, scope Scope, ownerID string) (int64, error) {
	return s.queries.CountOwnerThemes(ctx, dbgen.CountOwnerThemesParams{
		Scope:   string(scope),
		OwnerID: ownerID,
	})
}

// CreateTheme inserts a custom theme. The theme must already carry its id, scope and owner.
func (s *Store) CreateTheme(ctx context.Context, theme Theme) (Theme, error) {
	if theme.Scope == ScopeBuiltIn {
		return Theme{}, fmt.Errorf("%w: built-in themes are seeded, not created", ErrInvalidTheme)
	}
	if err := theme.Validate(); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	colors, typography, layout, buttons, inputFields, err := EncodePartitions(theme)
	if err != nil {
		return Theme{}, err
	}
	row, err := s.queries.CreateTheme(ctx, dbgen.CreateThemeParams{
		ID:          theme.ID,
		Scope:       string(theme.Scope),
		OwnerID:     theme.OwnerID,
		Name:        theme.Name,
		Description: theme.Description,
		Category:    theme.Category,
		Colors:      colors,
		Typography:  typography,
		Layout:      layout,
		Buttons:     buttons,
		InputFields: inputFields,
	})
	if err != nil {
		return Theme{}, err
	}
	s.invalidate(ctx, ownerCacheKey(theme.Scope, theme.OwnerID))
	return ThemeFromDB(row)
}

// UpdateTheme replaces the name, metadata and tokens of a custom theme.
func (s *Store) UpdateTheme(ctx context.Context, theme Theme) (Theme, error) {
	if err := theme.Validate(); err != nil {
		return Theme{}, fmt.Errorf("%w: %v", ErrInvalidTheme, err)
	}
	colors, typography, layout, buttons, inputFields, err := EncodePartitions(theme)
	if err != nil {
		return Theme{}, err
	}
	row, err := s.queries.UpdateTheme(ctx, dbgen.UpdateThemeParams{
		Name:        theme.Name,
		Description: theme.Description,
		Category:    theme.Category,
		Colors:      colors,
		Typography:  typography,
		Layout:      layout,
		Buttons:     buttons,
		InputFields: inputFields,
		Scope:       string(theme.Scope),
		OwnerID:     theme.OwnerID,
		ID:          theme.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Theme{}, ErrNotFound
		}
		return Theme{}, err
	}
	s.invalidate(ctx, ownerCacheKey(theme.Scope, theme.OwnerID))
	return ThemeFromDB(row)
}

func (s *Store) DeleteTheme(ctx context.Context, scope Scope, ownerID, id string) error {
	affected, err := s.queries.DeleteTheme(ctx, dbgen.DeleteThemeParams{
		Scope:   string(scope),
		OwnerID: ownerID,
		ID:      id,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	s.invalidate(ctx, ownerCacheKey(scope, ownerID))
	return nil
}

func (s *Store) CreateForm(ctx context.Context, form Form) (Form, error) {
	if err := form.Validate(); err != nil {
		return Form{}, err
	}
	row, err := s.queries.CreateForm(ctx, dbgen.CreateFormParams{
		ID:          form.ID,
		WorkspaceID: form.WorkspaceID,
		OwnerID:     form.OwnerID,
		Title:       form.Title,
	})
	if err != nil {
		return Form{}, err
	}
	return FormFromDB(row), nil
}

func (s *Store) GetForm(ctx context.Context, id string) (Form, error) {
	return GetForm(ctx, s.queries, id)
}

func (s *Store) GetFormTheme(ctx context.Context, formID string) (FormTheme, error) {
	return GetFormTheme(ctx, s.queries, formID)
}

// SetFormBaseTheme points the form at a new base theme and clears its overrides.
func (s *Store) SetFormBaseTheme(ctx context.Context, formID, baseThemeID string) error {
	err := s.queries.SetFormBaseTheme(ctx, dbgen.SetFormBaseThemeParams{
		FormID:      formID,
		BaseThemeID: baseThemeID,
	})
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// SaveFormOverrides writes the partitions present in overrides. Absent partitions keep their stored value.
// baseThemeID is only used when the form has no binding yet.
func (s *Store) SaveFormOverrides(ctx context.Context, formID, baseThemeID string, overrides ThemeOverrides) error {
	colors, typography, layout, buttons, inputFields, err := EncodeOverrideColumns(overrides)
	if err != nil {
		return err
	}
	err = s.queries.UpsertFormThemeOverrides(ctx, dbgen.UpsertFormThemeOverridesParams{
		FormID:      formID,
		BaseThemeID: baseThemeID,
		Colors:      colors,
		Typography:  typography,
		Layout:      layout,
		Buttons:     buttons,
		InputFields: inputFields,
	})
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

// ResetFormTheme binds the form back to the default theme with no overrides.
func (s *Store) ResetFormTheme(ctx context.Context, formID string) error {
	err := s.queries.ResetFormTheme(ctx, dbgen.ResetFormThemeParams{
		FormID:      formID,
		BaseThemeID: DefaultThemeID,
	})
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

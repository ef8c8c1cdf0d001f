package theming

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tarunkumar2005/fomi/internal/models"
)

// CatalogStore reads the three theme lists a session can see.
type CatalogStore interface {
	ListBuiltInThemes(ctx context.Context) ([]models.Theme, error)
	ListUserThemes(ctx context.Context, userID string) ([]models.Theme, error)
	ListWorkspaceThemes(ctx context.Context, workspaceID string) ([]models.Theme, error)
}

// Catalog is a snapshot of the themes visible to one session.
type Catalog struct {
	BuiltIn   []models.Theme
	Workspace []models.Theme
	User      []models.Theme
}

// LoadCatalog fetches the three lists concurrently. Any failure returns ErrLoadThemes and no catalog.
func LoadCatalog(ctx context.Context, store CatalogStore, session Session) (Catalog, error) {
	var catalog Catalog
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		themes, err := store.ListBuiltInThemes(gctx)
		if err != nil {
			return fmt.Errorf("built-in themes: %w", err)
		}
		catalog.BuiltIn = themes
		return nil
	})
	g.Go(func() error {
		themes, err := store.ListWorkspaceThemes(gctx, session.WorkspaceID)
		if err != nil {
			return fmt.Errorf("workspace themes: %w", err)
		}
		catalog.Workspace = themes
		return nil
	})
	g.Go(func() error {
		themes, err := store.ListUserThemes(gctx, session.UserID)
		if err != nil {
			return fmt.Errorf("user themes: %w", err)
		}
		catalog.User = themes
		return nil
	})
	if err := g.Wait(); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrLoadThemes, err)
	}
	return catalog, nil
}

// Combined merges the lists into one id-keyed map. Built-in themes go in first, then workspace,
// then user themes, so on an id collision the user theme wins.
func (c Catalog) Combined() map[string]models.Theme {
	combined := make(map[string]models.Theme, len(c.BuiltIn)+len(c.Workspace)+len(c.User))
	for _, list := range [][]models.Theme{c.BuiltIn, c.Workspace, c.User} {
		for _, theme := range list {
			combined[theme.ID] = theme
		}
	}
	return combined
}

// Lookup finds id in the combined view. It walks the lists in reverse insertion order so the
// answer always matches Combined.
func (c Catalog) Lookup(id string) (models.Theme, bool) {
	for _, list := range [][]models.Theme{c.User, c.Workspace, c.BuiltIn} {
		for i := len(list) - 1; i >= 0; i-- {
			if list[i].ID == id {
				return list[i], true
			}
		}
	}
	return models.Theme{}, false
}

// List returns the combined view as a slice: built-in, then workspace, then user themes,
// each id once, skipping entries shadowed by a later list.
func (c Catalog) List() []models.Theme {
	combined := c.Combined()
	out := make([]models.Theme, 0, len(combined))
	seen := make(map[string]struct{}, len(combined))
	for _, list := range [][]models.Theme{c.BuiltIn, c.Workspace, c.User} {
		for _, theme := range list {
			winner := combined[theme.ID]
			if winner.Scope != theme.Scope || winner.OwnerID != theme.OwnerID {
				continue
			}
			if _, dup := seen[theme.ID]; dup {
				continue
			}
			seen[theme.ID] = struct{}{}
			out = append(out, winner)
		}
	}
	return out
}

func (c Catalog) Len() int {
	return len(c.BuiltIn) + len(c.Workspace) + len(c.User)
}

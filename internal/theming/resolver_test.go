package theming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/tarunkumar2005/fomi/internal/models"
)

func testCatalog() Catalog {
	ocean := builtInTheme("ocean", "Ocean")
	ocean.Colors.Primary = "#111111"
	return Catalog{
		BuiltIn:   []models.Theme{models.DefaultTheme(), ocean},
		Workspace: []models.Theme{customTheme(models.ScopeWorkspace, "ws_1", "brand", "Brand")},
		User:      []models.Theme{customTheme(models.ScopeUser, "user_1", "mine", "Mine")},
	}
}

func TestResolveIsTotal(t *testing.T) {
	catalog := testCatalog()
	colors := models.DefaultTheme().Colors
	colors.Primary = "#222222"

	tests := []struct {
		name      string
		base      string
		overrides models.ThemeOverrides
		wantID    string
	}{
		{name: "built-in", base: "ocean", wantID: "ocean"},
		{name: "workspace", base: "brand", wantID: "brand"},
		{name: "user", base: "mine", wantID: "mine"},
		{name: "unknown falls back", base: "deleted-theme", wantID: models.DefaultThemeID},
		{name: "empty id falls back", base: "", wantID: models.DefaultThemeID},
		{name: "with overrides", base: "ocean", overrides: models.ThemeOverrides{Colors: &colors}, wantID: "ocean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(catalog, tt.base, tt.overrides)
			if got.ID != tt.wantID {
				t.Fatalf("Resolve() id = %q, want %q", got.ID, tt.wantID)
			}
			if err := got.ValidateTokens(); err != nil {
				t.Fatalf("Resolve() returned an incomplete theme: %v", err)
			}
		})
	}
}

func TestResolveReplacesWholePartition(t *testing.T) {
	catalog := testCatalog()
	// The override names primary only; every other color field is left empty on purpose.
	override := models.ThemeOverrides{Colors: &models.Colors{Primary: "#222222"}}

	got := Resolve(catalog, "ocean", override)

	if diff := cmp.Diff(*override.Colors, got.Colors); diff != "" {
		t.Fatalf("resolved colors must equal the override exactly (-want +got):\n%s", diff)
	}
	if got.Colors.Background != "" {
		t.Fatalf("background = %q, want empty rather than inherited from the base", got.Colors.Background)
	}
	base, _ := catalog.Lookup("ocean")
	if got.Typography != base.Typography || got.Layout != base.Layout {
		t.Fatalf("partitions without an override must come from the base theme")
	}
}

func TestResolveDoesNotAliasOverrides(t *testing.T) {
	layout := models.DefaultTheme().Layout
	layout.BorderRadius = 20
	overrides := models.ThemeOverrides{Layout: &layout}

	got := Resolve(testCatalog(), models.DefaultThemeID, overrides)
	layout.BorderRadius = 0
	if got.Layout.BorderRadius != 20 {
		t.Fatalf("resolved theme changed with the override record")
	}
}

func TestDiff(t *testing.T) {
	base := models.DefaultTheme()

	t.Run("identical themes", func(t *testing.T) {
		same := models.DefaultTheme()
		if got := Diff(same, base); !got.IsEmpty() {
			t.Fatalf("Diff(theme, theme) = %v, want empty", got.Partitions())
		}
	})

	t.Run("one field changes one partition", func(t *testing.T) {
		current := models.DefaultTheme()
		current.Layout.BorderRadius = 16
		got := Diff(current, base)
		want := models.ThemeOverrides{Layout: &current.Layout}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("Diff() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("metadata is ignored", func(t *testing.T) {
		current := models.DefaultTheme()
		current.Name = "Renamed"
		current.ID = "other"
		if got := Diff(current, base); !got.IsEmpty() {
			t.Fatalf("Diff() = %v, want empty for metadata-only change", got.Partitions())
		}
	})

	t.Run("result is a copy", func(t *testing.T) {
		current := models.DefaultTheme()
		current.Buttons.Variant = models.ButtonVariantOutline
		got := Diff(current, base)
		current.Buttons.Variant = models.ButtonVariantGhost
		if got.Buttons.Variant != models.ButtonVariantOutline {
			t.Fatalf("Diff() aliases the current theme")
		}
	})

	t.Run("resolve then diff round trips", func(t *testing.T) {
		typography := base.Typography
		typography.FontWeight = 600
		overrides := models.ThemeOverrides{Typography: &typography}
		got := Diff(Resolve(testCatalog(), models.DefaultThemeID, overrides), base)
		if diff := cmp.Diff(overrides, got); diff != "" {
			t.Fatalf("Diff(Resolve()) mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCatalogUserThemeWinsCollision(t *testing.T) {
	mine := customTheme(models.ScopeUser, "user_1", models.DefaultThemeID, "My Default")
	mine.Colors.Primary = "#7c3aed"
	catalog := Catalog{
		BuiltIn:   []models.Theme{models.DefaultTheme()},
		Workspace: []models.Theme{customTheme(models.ScopeWorkspace, "ws_1", models.DefaultThemeID, "Team Default")},
		User:      []models.Theme{mine},
	}

	combined := catalog.Combined()
	if got := combined[models.DefaultThemeID]; got.Scope != models.ScopeUser {
		t.Fatalf("Combined()[default] scope = %q, want user", got.Scope)
	}
	if got, _ := catalog.Lookup(models.DefaultThemeID); got.Name != "My Default" {
		t.Fatalf("Lookup(default) = %q, want My Default", got.Name)
	}
	if got := Resolve(catalog, models.DefaultThemeID, models.ThemeOverrides{}); got.Colors.Primary != "#7c3aed" {
		t.Fatalf("Resolve(default) primary = %q, want the user theme", got.Colors.Primary)
	}

	list := catalog.List()
	if len(list) != 1 || list[0].Scope != models.ScopeUser {
		t.Fatalf("List() = %+v, want only the user theme", list)
	}
	if catalog.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", catalog.Len())
	}
}

func TestCatalogListOrder(t *testing.T) {
	var ids []string
	for _, theme := range testCatalog().List() {
		ids = append(ids, theme.ID)
	}
	want := []string{models.DefaultThemeID, "ocean", "brand", "mine"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("List() order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCatalog(t *testing.T) {
	store := newMockStore(clockwork.NewFakeClock())
	store.addCustom(customTheme(models.ScopeUser, "user_1", "mine", "Mine"))
	store.addCustom(customTheme(models.ScopeUser, "user_2", "theirs", "Theirs"))
	store.addCustom(customTheme(models.ScopeWorkspace, "ws_1", "brand", "Brand"))

	catalog, err := LoadCatalog(context.Background(), store, testSession)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(catalog.BuiltIn) != 2 || len(catalog.Workspace) != 1 || len(catalog.User) != 1 {
		t.Fatalf("LoadCatalog() sizes = %d/%d/%d, want 2/1/1", len(catalog.BuiltIn), len(catalog.Workspace), len(catalog.User))
	}
	if catalog.User[0].ID != "mine" {
		t.Fatalf("user themes = %+v, want only the session user's", catalog.User)
	}

	store.setListErr(errors.New("connection refused"))
	if _, err := LoadCatalog(context.Background(), store, testSession); !errors.Is(err, ErrLoadThemes) {
		t.Fatalf("LoadCatalog() error = %v, want ErrLoadThemes", err)
	}
}

func TestTimerScheduler(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scheduler := NewTimerScheduler(clock)
	fired := make(chan string, 4)

	scheduler.Arm(time.Second, func() { fired <- "first" })
	clock.Advance(500 * time.Millisecond)
	scheduler.Arm(time.Second, func() { fired <- "second" })
	clock.Advance(999 * time.Millisecond)
	if !scheduler.Pending() {
		t.Fatalf("Pending() = false before the re-armed delay elapsed")
	}
	clock.Advance(time.Millisecond)

	select {
	case got := <-fired:
		if got != "second" {
			t.Fatalf("fired %q, want second", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the callback")
	}

	scheduler.Arm(time.Second, func() { fired <- "cancelled" })
	scheduler.Cancel()
	clock.Advance(time.Hour)
	if scheduler.Pending() {
		t.Fatalf("Pending() = true after Cancel")
	}
	select {
	case got := <-fired:
		t.Fatalf("unexpected callback %q", got)
	case <-time.After(20 * time.Millisecond):
	}
}

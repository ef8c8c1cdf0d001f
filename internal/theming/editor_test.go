package theming

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tarunkumar2005/fomi/internal/models"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestEditor(t *testing.T, store *mockStore, clock clockwork.Clock, metrics *Metrics) *Editor {
	t.Helper()
	editor, err := NewEditor(context.Background(), EditorConfig{
		Session: testSession,
		FormID:  "form_1",
		Store:   store,
		Library: NewService(store, 0),
		Clock:   clock,
		Metrics: metrics,
	})
	if err != nil {
		t.Fatalf("NewEditor() error = %v", err)
	}
	t.Cleanup(editor.Close)
	return editor
}

func TestEditorDebounceCoalescesEdits(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	metrics := NewMetrics(prometheus.NewRegistry())
	editor := newTestEditor(t, store, clock, metrics)
	original := editor.CurrentTheme()

	colors := original.Colors
	colors.Primary = "#ff0000"
	if err := editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors}); err != nil {
		t.Fatalf("UpdateCurrentTheme() error = %v", err)
	}
	if editor.State() != StateDirty || !editor.HasUnsavedChanges() {
		t.Fatalf("state after edit = %s, want dirty", editor.State())
	}

	clock.Advance(200 * time.Millisecond)
	layout := original.Layout
	layout.BorderRadius = 0
	if err := editor.UpdateCurrentTheme(models.ThemeOverrides{Layout: &layout}); err != nil {
		t.Fatalf("UpdateCurrentTheme() error = %v", err)
	}

	clock.Advance(300 * time.Millisecond)
	colors.Primary = "#00ff00"
	if err := editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors}); err != nil {
		t.Fatalf("UpdateCurrentTheme() error = %v", err)
	}

	clock.Advance(799 * time.Millisecond)
	if got := len(store.savedWrites()); got != 0 {
		t.Fatalf("writes at t=1299ms = %d, want 0", got)
	}

	clock.Advance(time.Millisecond)
	waitForSave(t, store)
	waitFor(t, "editor to settle", func() bool { return editor.State() == StateClean })

	writes := store.savedWrites()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want exactly 1", len(writes))
	}
	if want := epoch.Add(1300 * time.Millisecond); !writes[0].At.Equal(want) {
		t.Fatalf("write at %s, want %s", writes[0].At.Sub(epoch), want.Sub(epoch))
	}
	want := models.ThemeOverrides{Colors: &colors, Layout: &layout}
	if diff := cmp.Diff(want, writes[0].Overrides); diff != "" {
		t.Fatalf("written overrides mismatch (-want +got):\n%s", diff)
	}
	if writes[0].BaseThemeID != models.DefaultThemeID {
		t.Fatalf("write base = %q, want default", writes[0].BaseThemeID)
	}

	if got := promtest.ToFloat64(metrics.coalescedEdits); got != 2 {
		t.Fatalf("coalesced edits = %v, want 2", got)
	}
	if got := promtest.ToFloat64(metrics.saves.WithLabelValues("autosave", "ok")); got != 1 {
		t.Fatalf("autosaves = %v, want 1", got)
	}

	// Nothing is pending, so moving the clock on must not write again.
	clock.Advance(5 * time.Second)
	if got := len(store.savedWrites()); got != 1 {
		t.Fatalf("writes after idle = %d, want 1", got)
	}
}

func TestEditorRevertedEditSkipsWrite(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)
	original := editor.CurrentTheme()

	buttons := original.Buttons
	buttons.Style = models.ButtonStylePill
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Buttons: &buttons})
	restored := original.Buttons
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Buttons: &restored})

	if err := editor.SaveChanges(context.Background()); err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}
	if got := len(store.savedWrites()); got != 0 {
		t.Fatalf("writes = %d, want 0 for an empty diff", got)
	}
	if editor.HasUnsavedChanges() {
		t.Fatalf("HasUnsavedChanges() = true after an empty save")
	}
}

func TestEditorSaveChangesCancelsTimer(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	layout := editor.CurrentTheme().Layout
	layout.Shadow = models.ShadowLg
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Layout: &layout})
	if err := editor.SaveChanges(context.Background()); err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}
	clock.Advance(time.Second)

	if got := len(store.savedWrites()); got != 1 {
		t.Fatalf("writes = %d, want 1", got)
	}
	if got := store.binding("form_1").Overrides; got.Layout == nil || got.Layout.Shadow != models.ShadowLg {
		t.Fatalf("stored overrides = %+v, want layout with lg shadow", got)
	}
}

func TestEditorSaveFailureKeepsDirty(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)
	store.setSaveErr(errors.New("database is locked"))

	colors := editor.CurrentTheme().Colors
	colors.Accent = "#fde68a"
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors})
	clock.Advance(DefaultAutosaveDelay)
	waitForSave(t, store)
	waitFor(t, "error to be recorded", func() bool { return editor.Err() != nil })

	if !editor.HasUnsavedChanges() || editor.State() != StateDirty {
		t.Fatalf("state after failed save = %s, want dirty", editor.State())
	}
	if editor.CurrentTheme().Colors.Accent != "#fde68a" {
		t.Fatalf("failed save rolled back the in-memory theme")
	}

	// No automatic retry.
	clock.Advance(10 * time.Second)
	time.Sleep(20 * time.Millisecond)
	store.mu.Lock()
	attempts := store.attempts
	store.mu.Unlock()
	if attempts != 1 {
		t.Fatalf("save attempts = %d, want 1", attempts)
	}

	// The next edit retries and carries both changes against the original baseline.
	store.setSaveErr(nil)
	typography := editor.CurrentTheme().Typography
	typography.FontSize = models.FontSizeLarge
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Typography: &typography})
	clock.Advance(DefaultAutosaveDelay)
	waitForSave(t, store)
	waitFor(t, "editor to settle", func() bool { return editor.State() == StateClean })

	writes := store.savedWrites()
	if len(writes) != 1 {
		t.Fatalf("successful writes = %d, want 1", len(writes))
	}
	if got := writes[0].Overrides.Partitions(); len(got) != 2 {
		t.Fatalf("retried write partitions = %v, want colors and typography", got)
	}
	if editor.Err() != nil {
		t.Fatalf("Err() = %v after a successful save, want nil", editor.Err())
	}
}

func TestEditorEditsDuringSaveStayDirty(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)
	gate := make(chan struct{})
	store.mu.Lock()
	store.gate = gate
	store.mu.Unlock()

	colors := editor.CurrentTheme().Colors
	colors.Primary = "#123456"
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors})

	done := make(chan error, 1)
	go func() { done <- editor.SaveChanges(context.Background()) }()
	waitFor(t, "save to start", editor.IsSaving)
	if editor.State() != StateSaving {
		t.Fatalf("State() = %s, want saving", editor.State())
	}

	layout := editor.CurrentTheme().Layout
	layout.Spacing = models.SpacingCompact
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Layout: &layout})

	store.mu.Lock()
	store.gate = nil
	store.mu.Unlock()
	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("SaveChanges() error = %v", err)
	}
	if !editor.HasUnsavedChanges() {
		t.Fatalf("edit made during the save was marked saved")
	}

	if err := editor.SaveChanges(context.Background()); err != nil {
		t.Fatalf("second SaveChanges() error = %v", err)
	}
	writes := store.savedWrites()
	if len(writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(writes))
	}
	if got := writes[1].Overrides.Partitions(); len(got) != 1 || got[0] != models.PartitionLayout {
		t.Fatalf("second write partitions = %v, want only layout", got)
	}
}

func TestEditorApplyTheme(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	t.Run("unknown id fails before any I/O", func(t *testing.T) {
		before := store.callCount()
		err := editor.ApplyTheme(context.Background(), "no-such-theme")
		if !errors.Is(err, ErrThemeNotFound) {
			t.Fatalf("ApplyTheme() error = %v, want ErrThemeNotFound", err)
		}
		if after := store.callCount(); after != before {
			t.Fatalf("store calls = %d, want %d", after, before)
		}
	})

	t.Run("known id replaces theme and drops pending edits", func(t *testing.T) {
		buttons := editor.CurrentTheme().Buttons
		buttons.Size = models.SizeLg
		_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Buttons: &buttons})

		if err := editor.ApplyTheme(context.Background(), "ocean"); err != nil {
			t.Fatalf("ApplyTheme() error = %v", err)
		}
		clock.Advance(time.Second)

		if editor.BaseThemeID() != "ocean" || editor.CurrentTheme().Colors.Primary != "#0ea5e9" {
			t.Fatalf("current = %q/%q, want ocean", editor.BaseThemeID(), editor.CurrentTheme().Colors.Primary)
		}
		if editor.HasUnsavedChanges() {
			t.Fatalf("HasUnsavedChanges() = true after apply")
		}
		if got := len(store.savedWrites()); got != 0 {
			t.Fatalf("pending edit was written after apply: %d writes", got)
		}
		binding := store.binding("form_1")
		if binding.BaseThemeID != "ocean" || !binding.Overrides.IsEmpty() {
			t.Fatalf("binding = %+v, want ocean without overrides", binding)
		}
		if !editor.Overrides().IsEmpty() {
			t.Fatalf("Overrides() = %v, want none right after apply", editor.Overrides().Partitions())
		}
	})
}

func TestEditorEditsDuringRebindAreKept(t *testing.T) {
	tests := []struct {
		name     string
		rebind   func(*Editor) error
		wantBase string
	}{
		{
			name:     "apply",
			rebind:   func(e *Editor) error { return e.ApplyTheme(context.Background(), "ocean") },
			wantBase: "ocean",
		},
		{
			name:     "reset",
			rebind:   func(e *Editor) error { return e.ResetTheme(context.Background()) },
			wantBase: models.DefaultThemeID,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clock := clockwork.NewFakeClockAt(epoch)
			store := newMockStore(clock)
			editor := newTestEditor(t, store, clock, nil)
			gate := make(chan struct{})
			store.mu.Lock()
			store.bindGate = gate
			store.mu.Unlock()

			done := make(chan error, 1)
			go func() { done <- tc.rebind(editor) }()
			waitFor(t, "rebind to start", editor.IsSaving)

			layout := editor.CurrentTheme().Layout
			layout.BorderRadius = 33
			if err := editor.UpdateCurrentTheme(models.ThemeOverrides{Layout: &layout}); err != nil {
				t.Fatalf("UpdateCurrentTheme() error = %v", err)
			}

			close(gate)
			if err := <-done; err != nil {
				t.Fatalf("rebind error = %v", err)
			}

			current := editor.CurrentTheme()
			if editor.BaseThemeID() != tc.wantBase {
				t.Fatalf("BaseThemeID() = %q, want %q", editor.BaseThemeID(), tc.wantBase)
			}
			if current.Layout.BorderRadius != 33 {
				t.Fatalf("borderRadius = %v, want the edit made during the write (33)", current.Layout.BorderRadius)
			}
			if !editor.HasUnsavedChanges() {
				t.Fatalf("edit made during the write was marked saved")
			}

			clock.Advance(time.Second)
			waitForSave(t, store)
			writes := store.savedWrites()
			if len(writes) != 1 {
				t.Fatalf("writes = %d, want 1", len(writes))
			}
			if writes[0].BaseThemeID != tc.wantBase {
				t.Fatalf("write base = %q, want %q", writes[0].BaseThemeID, tc.wantBase)
			}
			if got := writes[0].Overrides.Partitions(); len(got) != 1 || got[0] != models.PartitionLayout {
				t.Fatalf("write partitions = %v, want only layout", got)
			}
			waitFor(t, "editor to settle", func() bool { return !editor.HasUnsavedChanges() })
		})
	}
}

func TestEditorRebindFailureKeepsEdits(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	colors := editor.CurrentTheme().Colors
	colors.Primary = "#abcdef"
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors})

	store.mu.Lock()
	store.bindErr = errors.New("disk full")
	store.mu.Unlock()
	if err := editor.ApplyTheme(context.Background(), "ocean"); err == nil {
		t.Fatal("ApplyTheme() error = nil, want failure")
	}
	if editor.BaseThemeID() != models.DefaultThemeID {
		t.Fatalf("BaseThemeID() = %q after failed apply", editor.BaseThemeID())
	}
	if editor.CurrentTheme().Colors.Primary != "#abcdef" || !editor.HasUnsavedChanges() {
		t.Fatalf("failed apply dropped the pending edit")
	}
	if editor.IsSaving() {
		t.Fatalf("IsSaving() = true after failed apply")
	}

	clock.Advance(time.Second)
	waitForSave(t, store)
	writes := store.savedWrites()
	if len(writes) != 1 || writes[0].BaseThemeID != models.DefaultThemeID || writes[0].Overrides.Colors == nil {
		t.Fatalf("writes after failed apply = %+v, want the colors edit on the default base", writes)
	}
}

func TestEditorResetTheme(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	layout := models.DefaultTheme().Layout
	layout.BorderRadius = 24
	store.bindings["form_1"] = models.FormTheme{
		FormID:      "form_1",
		BaseThemeID: "ocean",
		Overrides:   models.ThemeOverrides{Layout: &layout},
	}
	editor := newTestEditor(t, store, clock, nil)

	if got := editor.CurrentTheme(); got.ID != "ocean" || got.Layout.BorderRadius != 24 {
		t.Fatalf("loaded theme = %q radius %v, want ocean with override", got.ID, got.Layout.BorderRadius)
	}

	colors := editor.CurrentTheme().Colors
	colors.Primary = "#000000"
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors})

	if err := editor.ResetTheme(context.Background()); err != nil {
		t.Fatalf("ResetTheme() error = %v", err)
	}
	clock.Advance(time.Second)

	if diff := cmp.Diff(models.DefaultTheme(), editor.CurrentTheme()); diff != "" {
		t.Fatalf("current after reset differs from the default theme (-want +got):\n%s", diff)
	}
	if editor.HasUnsavedChanges() {
		t.Fatalf("HasUnsavedChanges() = true after reset")
	}
	if got := len(store.savedWrites()); got != 0 {
		t.Fatalf("writes after reset = %d, want 0", got)
	}
	binding := store.binding("form_1")
	if binding.BaseThemeID != models.DefaultThemeID || !binding.Overrides.IsEmpty() {
		t.Fatalf("binding after reset = %+v", binding)
	}
}

func TestEditorLoadThemesKeepsSnapshotOnFailure(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	store.setListErr(errors.New("timeout"))
	err := editor.LoadThemes(context.Background())
	if !errors.Is(err, ErrLoadThemes) {
		t.Fatalf("LoadThemes() error = %v, want ErrLoadThemes", err)
	}
	if !strings.HasPrefix(editor.Err().Error(), "Failed to load themes") {
		t.Fatalf("Err() = %q, want the load failure message", editor.Err())
	}
	if got := len(editor.Themes()); got != 2 {
		t.Fatalf("Themes() = %d after failed reload, want the previous 2", got)
	}
}

func TestEditorCatalogOperations(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)
	ctx := context.Background()

	copied, err := editor.DuplicateTheme(ctx, "ocean", "")
	if err != nil {
		t.Fatalf("DuplicateTheme() error = %v", err)
	}
	if copied.Name != "Copy of Ocean" || copied.Scope != models.ScopeUser {
		t.Fatalf("DuplicateTheme() = %q/%q", copied.Name, copied.Scope)
	}
	if got := len(editor.Themes()); got != 3 {
		t.Fatalf("Themes() after duplicate = %d, want 3", got)
	}
	if err := editor.ApplyTheme(ctx, copied.ID); err != nil {
		t.Fatalf("ApplyTheme(copy) error = %v", err)
	}

	exported, err := editor.ExportTheme(ctx, copied.ID)
	if err != nil {
		t.Fatalf("ExportTheme() error = %v", err)
	}
	imported, err := editor.ImportTheme(ctx, exported)
	if err != nil {
		t.Fatalf("ImportTheme() error = %v", err)
	}
	if imported.ID == copied.ID || !imported.SameTokens(copied) {
		t.Fatalf("ImportTheme() = %+v, want a new theme with the copied tokens", imported)
	}

	if err := editor.DeleteTheme(ctx, copied.ID); err != nil {
		t.Fatalf("DeleteTheme() error = %v", err)
	}
	if _, ok := editor.Catalog().Lookup(copied.ID); ok {
		t.Fatalf("deleted theme still in the catalog snapshot")
	}

	err = editor.DeleteTheme(ctx, models.DefaultThemeID)
	if !errors.Is(err, ErrBuiltInReadOnly) {
		t.Fatalf("DeleteTheme(default) error = %v, want ErrBuiltInReadOnly", err)
	}
	if !errors.Is(editor.Err(), ErrBuiltInReadOnly) {
		t.Fatalf("Err() = %v, want the delete failure recorded", editor.Err())
	}
}

func TestEditorClosed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	colors := editor.CurrentTheme().Colors
	colors.Ring = "#000000"
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors})
	editor.Close()
	clock.Advance(time.Second)

	if got := len(store.savedWrites()); got != 0 {
		t.Fatalf("closed editor autosaved %d times", got)
	}
	if err := editor.UpdateCurrentTheme(models.ThemeOverrides{Colors: &colors}); !errors.Is(err, ErrEditorClosed) {
		t.Fatalf("UpdateCurrentTheme() after Close error = %v, want ErrEditorClosed", err)
	}
	if err := editor.SaveChanges(context.Background()); !errors.Is(err, ErrEditorClosed) {
		t.Fatalf("SaveChanges() after Close error = %v, want ErrEditorClosed", err)
	}
}

func TestEditorSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	store := newMockStore(clock)
	editor := newTestEditor(t, store, clock, nil)

	inputs := editor.CurrentTheme().InputFields
	inputs.Style = models.InputStyleFilled
	_ = editor.UpdateCurrentTheme(models.ThemeOverrides{InputFields: &inputs})

	snap := editor.Snapshot()
	if snap.State != "dirty" || !snap.HasUnsavedChanges || snap.IsSaving {
		t.Fatalf("Snapshot() flags = %+v", snap)
	}
	if got := snap.Overrides.Partitions(); len(got) != 1 || got[0] != models.PartitionInputFields {
		t.Fatalf("Snapshot().Overrides = %v, want inputFields", got)
	}
	if snap.Error != "" {
		t.Fatalf("Snapshot().Error = %q, want empty", snap.Error)
	}
}

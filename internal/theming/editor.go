package theming

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/models"
)

const (
	// DefaultAutosaveDelay is how long edits must be quiet before they are written.
	DefaultAutosaveDelay = 800 * time.Millisecond
	defaultSaveTimeout   = 10 * time.Second
)

// EditorStore is the persistence one form's editor needs.
type EditorStore interface {
	CatalogStore
	GetFormTheme(ctx context.Context, formID string) (models.FormTheme, error)
	SetFormBaseTheme(ctx context.Context, formID, baseThemeID string) error
	SaveFormOverrides(ctx context.Context, formID, baseThemeID string, overrides models.ThemeOverrides) error
	ResetFormTheme(ctx context.Context, formID string) error
}

// State is the persistence state of an editor.
type State int

const (
	StateClean State = iota
	StateDirty
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type EditorConfig struct {
	Session Session
	FormID  string
	Store   EditorStore
	// Library backs the catalog operations. Without one they fail.
	Library       *Service
	Scheduler     Scheduler
	Clock         clockwork.Clock
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	Metrics       *Metrics
	Logger        *zerolog.Logger
}

// Editor holds one form's in-memory theme while it is being edited and writes the changed
// partitions back after edits go quiet.
type Editor struct {
	session   Session
	formID    string
	store     EditorStore
	library   *Service
	scheduler Scheduler
	clock     clockwork.Clock
	delay     time.Duration
	timeout   time.Duration
	metrics   *Metrics
	logger    zerolog.Logger

	// saveMu serializes writes so persisted order follows edit order.
	saveMu sync.Mutex

	mu          sync.Mutex
	catalog     Catalog
	baseThemeID string
	current     models.Theme
	baseline    models.Theme
	dirty       bool
	saving      bool
	armed       bool
	closed      bool
	err         error
	lastActive  time.Time

	// rebinding is set while an apply or reset is being written. Edits made meanwhile are
	// kept in interim and replayed onto the new base theme.
	rebinding bool
	interim   []models.ThemeOverrides
}

// NewEditor loads the session's catalog and the form's binding and returns a clean editor.
func NewEditor(ctx context.Context, cfg EditorConfig) (*Editor, error) {
	if err := cfg.Session.Validate(); err != nil {
		return nil, err
	}
	if cfg.FormID == "" {
		return nil, fmt.Errorf("form id is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("editor store is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = NewTimerScheduler(cfg.Clock)
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = DefaultAutosaveDelay
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = defaultSaveTimeout
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	e := &Editor{
		session:   cfg.Session,
		formID:    cfg.FormID,
		store:     cfg.Store,
		library:   cfg.Library,
		scheduler: cfg.Scheduler,
		clock:     cfg.Clock,
		delay:     cfg.AutosaveDelay,
		timeout:   cfg.SaveTimeout,
		metrics:   cfg.Metrics,
		logger: logger.With().
			Str("user_id", cfg.Session.UserID).
			Str("workspace_id", cfg.Session.WorkspaceID).
			Logger(),
	}

	catalog, err := LoadCatalog(ctx, e.store, e.session)
	if err != nil {
		return nil, err
	}
	binding, err := e.store.GetFormTheme(ctx, e.formID)
	if err != nil {
		return nil, fmt.Errorf("load form theme: %w", err)
	}

	effective := Resolve(catalog, binding.BaseThemeID, binding.Overrides)
	e.catalog = catalog
	e.baseThemeID = binding.BaseThemeID
	e.current = effective
	e.baseline = effective
	e.lastActive = e.clock.Now()
	return e, nil
}

func (e *Editor) FormID() string {
	return e.formID
}

func (e *Editor) Session() Session {
	return e.session
}

// UpdateCurrentTheme replaces each partition present in patch and (re)arms the autosave.
func (e *Editor) UpdateCurrentTheme(patch models.ThemeOverrides) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEditorClosed
	}
	e.lastActive = e.clock.Now()
	if patch.IsEmpty() {
		return nil
	}
	patch = patch.Clone()
	e.current = patch.ApplyTo(e.current)
	e.dirty = true
	if e.rebinding {
		e.interim = append(e.interim, patch)
	}
	if e.armed {
		e.metrics.editCoalesced()
	}
	e.armed = true
	e.scheduler.Arm(e.delay, e.autosave)
	return nil
}

// SaveChanges cancels a pending autosave and writes immediately.
func (e *Editor) SaveChanges(ctx context.Context) error {
	if err := e.checkOpen(); err != nil {
		return err
	}
	e.cancelPending()
	return e.save(ctx, "manual")
}

// Flush writes pending changes, if any. Used when a session is evicted or the server stops.
func (e *Editor) Flush(ctx context.Context) error {
	e.mu.Lock()
	dirty := e.dirty
	e.mu.Unlock()
	if !dirty {
		return nil
	}
	e.cancelPending()
	return e.save(ctx, "flush")
}

// ApplyTheme makes themeID the form's base theme and drops its overrides.
// An id missing from the catalog fails with ErrThemeNotFound before anything is written.
func (e *Editor) ApplyTheme(ctx context.Context, themeID string) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	theme, ok := e.catalog.Lookup(themeID)
	e.lastActive = e.clock.Now()
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrThemeNotFound, themeID)
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	e.cancelPending()

	e.startRebind()
	err := e.store.SetFormBaseTheme(ctx, e.formID, themeID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.abortRebindLocked()
		e.err = fmt.Errorf("apply theme: %w", err)
		log.Ctx(ctx).Error().Err(err).Str("form_id", e.formID).Str("theme_id", themeID).Msg("Failed to apply theme")
		return e.err
	}
	e.finishRebindLocked(themeID, theme)
	return nil
}

// ResetTheme clears the override record and points the form back at the default theme.
func (e *Editor) ResetTheme(ctx context.Context) error {
	if err := e.checkOpen(); err != nil {
		return err
	}

	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	e.cancelPending()

	e.startRebind()
	err := e.store.ResetFormTheme(ctx, e.formID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.abortRebindLocked()
		e.err = fmt.Errorf("reset theme: %w", err)
		log.Ctx(ctx).Error().Err(err).Str("form_id", e.formID).Msg("Failed to reset theme")
		return e.err
	}
	e.finishRebindLocked(models.DefaultThemeID, models.DefaultTheme())
	return nil
}

// LoadThemes refreshes the catalog snapshot. On failure the previous snapshot is kept.
func (e *Editor) LoadThemes(ctx context.Context) error {
	catalog, err := LoadCatalog(ctx, e.store, e.session)
	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.err = err
		log.Ctx(ctx).Error().Err(err).Str("form_id", e.formID).Msg("Failed to load themes")
		return err
	}
	e.catalog = catalog
	return nil
}

func (e *Editor) DuplicateTheme(ctx context.Context, themeID, name string) (models.Theme, error) {
	if e.library == nil {
		return models.Theme{}, e.fail(errors.New("theme library unavailable"))
	}
	theme, err := e.library.DuplicateTheme(ctx, e.session, themeID, name)
	if err != nil {
		return models.Theme{}, e.fail(fmt.Errorf("duplicate theme: %w", err))
	}
	e.reloadAfter(ctx, "duplicate")
	return theme, nil
}

func (e *Editor) DeleteTheme(ctx context.Context, themeID string) error {
	if e.library == nil {
		return e.fail(errors.New("theme library unavailable"))
	}
	if err := e.library.DeleteTheme(ctx, e.session, themeID); err != nil {
		return e.fail(fmt.Errorf("delete theme: %w", err))
	}
	e.reloadAfter(ctx, "delete")
	return nil
}

func (e *Editor) ImportTheme(ctx context.Context, data []byte) (models.Theme, error) {
	if e.library == nil {
		return models.Theme{}, e.fail(errors.New("theme library unavailable"))
	}
	theme, err := e.library.ImportTheme(ctx, e.session, data)
	if err != nil {
		return models.Theme{}, e.fail(fmt.Errorf("import theme: %w", err))
	}
	e.reloadAfter(ctx, "import")
	return theme, nil
}

func (e *Editor) ExportTheme(ctx context.Context, themeID string) ([]byte, error) {
	if e.library == nil {
		return nil, e.fail(errors.New("theme library unavailable"))
	}
	data, err := e.library.ExportTheme(ctx, e.session, themeID)
	if err != nil {
		return nil, e.fail(fmt.Errorf("export theme: %w", err))
	}
	return data, nil
}

// Close cancels any pending autosave. Unsaved changes are dropped; call Flush first to keep them.
func (e *Editor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cancelPending()
}

func (e *Editor) CurrentTheme() models.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

func (e *Editor) BaseThemeID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.baseThemeID
}

// Overrides is the form's override record as it would read after saving: every partition of
// the current theme that differs from the base theme.
func (e *Editor) Overrides() models.ThemeOverrides {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Diff(e.current, Resolve(e.catalog, e.baseThemeID, models.ThemeOverrides{}))
}

func (e *Editor) HasUnsavedChanges() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

func (e *Editor) IsSaving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// Err returns the last recorded failure, cleared by the next successful write.
func (e *Editor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Editor) Themes() []models.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.List()
}

func (e *Editor) Catalog() Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog
}

// LastActive is when the editor last handled an edit or command.
func (e *Editor) LastActive() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastActive
}

// Snapshot is the editor's observable state in one consistent read.
type Snapshot struct {
	FormID            string                `json:"formId"`
	BaseThemeID       string                `json:"baseThemeId"`
	Theme             models.Theme          `json:"theme"`
	Overrides         models.ThemeOverrides `json:"overrides"`
	HasUnsavedChanges bool                  `json:"hasUnsavedChanges"`
	IsSaving          bool                  `json:"isSaving"`
	State             string                `json:"state"`
	Error             string                `json:"error,omitempty"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		FormID:            e.formID,
		BaseThemeID:       e.baseThemeID,
		Theme:             e.current,
		Overrides:         Diff(e.current, Resolve(e.catalog, e.baseThemeID, models.ThemeOverrides{})),
		HasUnsavedChanges: e.dirty,
		IsSaving:          e.saving,
		State:             e.stateLocked().String(),
	}
	if e.err != nil {
		snap.Error = e.err.Error()
	}
	return snap
}

func (e *Editor) stateLocked() State {
	switch {
	case e.saving:
		return StateSaving
	case e.dirty:
		return StateDirty
	default:
		return StateClean
	}
}

// autosave is the scheduler callback.
func (e *Editor) autosave() {
	e.mu.Lock()
	e.armed = false
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(e.logger.WithContext(context.Background()), e.timeout)
	defer cancel()
	if err := e.save(ctx, "autosave"); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("form_id", e.formID).Msg("Autosave failed; changes stay unsaved until the next edit")
	}
}

// save writes the diff between the current theme and the baseline. On success the baseline
// advances to the snapshot that was written; edits made during the write keep the editor dirty.
func (e *Editor) save(ctx context.Context, trigger string) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	snapshot := e.current
	delta := Diff(snapshot, e.baseline)
	if delta.IsEmpty() {
		e.dirty = false
		e.mu.Unlock()
		e.metrics.observeSave(trigger, "noop", 0)
		return nil
	}
	e.saving = true
	baseThemeID := e.baseThemeID
	e.mu.Unlock()

	start := e.clock.Now()
	err := e.store.SaveFormOverrides(ctx, e.formID, baseThemeID, delta)
	elapsed := e.clock.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	if err != nil {
		e.err = fmt.Errorf("save theme: %w", err)
		e.metrics.observeSave(trigger, "error", elapsed)
		return e.err
	}
	e.baseline = snapshot
	e.dirty = !Diff(e.current, e.baseline).IsEmpty()
	e.err = nil
	e.metrics.observeSave(trigger, "ok", elapsed)
	log.Ctx(ctx).Debug().
		Str("form_id", e.formID).
		Str("trigger", trigger).
		Int("partitions", len(delta.Partitions())).
		Msg("Saved theme overrides")
	return nil
}

func (e *Editor) cancelPending() {
	e.mu.Lock()
	e.armed = false
	e.mu.Unlock()
	e.scheduler.Cancel()
}

// startRebind marks an apply or reset as in flight. The caller holds saveMu.
func (e *Editor) startRebind() {
	e.mu.Lock()
	e.saving = true
	e.rebinding = true
	e.interim = nil
	e.mu.Unlock()
}

// abortRebindLocked keeps the old base. Edits made before or during the write are already in
// current, so a dirty editor re-arms the autosave that the rebind cancelled.
func (e *Editor) abortRebindLocked() {
	e.saving = false
	e.rebinding = false
	e.interim = nil
	e.rearmLocked()
}

// finishRebindLocked moves the editor onto base and replays the edits made while the rebind
// was written, in call order. Replayed edits stay unsaved and re-arm the autosave.
func (e *Editor) finishRebindLocked(baseThemeID string, base models.Theme) {
	current := base
	for _, patch := range e.interim {
		current = patch.ApplyTo(current)
	}
	e.saving = false
	e.rebinding = false
	e.interim = nil
	e.baseThemeID = baseThemeID
	e.baseline = base
	e.current = current
	e.dirty = !Diff(current, base).IsEmpty()
	e.err = nil
	e.rearmLocked()
}

func (e *Editor) rearmLocked() {
	if e.dirty && !e.closed {
		e.armed = true
		e.scheduler.Arm(e.delay, e.autosave)
	}
}

func (e *Editor) checkOpen() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEditorClosed
	}
	e.lastActive = e.clock.Now()
	return nil
}

func (e *Editor) fail(err error) error {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
	return err
}

func (e *Editor) reloadAfter(ctx context.Context, op string) {
	if err := e.LoadThemes(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("op", op).Msg("Theme catalog reload failed")
	}
}

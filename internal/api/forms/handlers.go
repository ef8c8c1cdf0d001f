// internal/api/forms/handlers.go
package forms

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/api/apiutil"
	"github.com/tarunkumar2005/fomi/internal/models"
	"github.com/tarunkumar2005/fomi/internal/theming"
)

const (
	formQueryTimeout = 5 * time.Second
	formIDParam      = "id"
)

var (
	store     formStore
	sessions  *theming.Sessions
	initOnce  sync.Once
	newFormID = uuid.NewString
)

type formStore interface {
	CreateForm(ctx context.Context, form models.Form) (models.Form, error)
	GetForm(ctx context.Context, id string) (models.Form, error)
}

type formRequest struct {
	Title string `json:"title"`
}

type applyThemeRequest struct {
	ThemeID string `json:"themeId"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s formStore, editors *theming.Sessions) {
	if s == nil || editors == nil {
		return
	}
	initOnce.Do(func() {
		store = s
		sessions = editors
	})
}

// POST /api/v1/forms
func HandleFormCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	fs := loadStore()
	if fs == nil {
		logger.Error().Msg("Form store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}

	var req formRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	form := models.Form{
		ID:          newFormID(),
		WorkspaceID: session.WorkspaceID,
		OwnerID:     session.UserID,
		Title:       strings.TrimSpace(req.Title),
	}
	if err := form.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	created, err := fs.CreateForm(ctx, form)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create form")
		http.Error(w, "Failed to create form", http.StatusInternalServerError)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("form_id", created.ID).Msg("Failed to write form create response")
	}
}

// GET /api/v1/forms/{id}
func HandleFormDetail(w http.ResponseWriter, r *http.Request) {
	form, ok := loadAccessibleForm(w, r)
	if !ok {
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, form); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("form_id", form.ID).Msg("Failed to write form response")
	}
}

// GET /api/v1/forms/{id}/theme
func HandleFormTheme(w http.ResponseWriter, r *http.Request) {
	editor, ok := openEditor(w, r)
	if !ok {
		return
	}
	writeSnapshot(w, r, http.StatusOK, editor)
}

// PUT /api/v1/forms/{id}/theme
func HandleApplyTheme(w http.ResponseWriter, r *http.Request) {
	var req applyThemeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.ThemeID = strings.TrimSpace(req.ThemeID)
	if req.ThemeID == "" {
		apiutil.WriteError(w, r, apiutil.BadField("themeId", "is required"), "Rejected theme apply request")
		return
	}

	editor, ok := openEditor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	err := editor.ApplyTheme(ctx, req.ThemeID)
	if errors.Is(err, theming.ErrThemeNotFound) {
		// The theme may have been created after this editor loaded its catalog.
		if loadErr := editor.LoadThemes(ctx); loadErr == nil {
			err = editor.ApplyTheme(ctx, req.ThemeID)
		}
	}
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to apply theme")
		return
	}
	writeSnapshot(w, r, http.StatusOK, editor)
}

// PATCH /api/v1/forms/{id}/theme
// The body carries whole partitions; each one present replaces the current partition and the
// change is saved after the autosave delay.
func HandleUpdateTheme(w http.ResponseWriter, r *http.Request) {
	data, err := apiutil.ReadBody(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	patch, err := models.DecodeOverrides(data)
	if err != nil {
		apiutil.WriteError(w, r, err, "Rejected theme patch")
		return
	}

	editor, ok := openEditor(w, r)
	if !ok {
		return
	}
	if err := editor.UpdateCurrentTheme(patch); err != nil {
		apiutil.WriteError(w, r, err, "Failed to update theme")
		return
	}
	writeSnapshot(w, r, http.StatusAccepted, editor)
}

// POST /api/v1/forms/{id}/theme/save
func HandleSaveTheme(w http.ResponseWriter, r *http.Request) {
	editor, ok := openEditor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	if err := editor.SaveChanges(ctx); err != nil {
		apiutil.WriteError(w, r, err, "Failed to save theme")
		return
	}
	writeSnapshot(w, r, http.StatusOK, editor)
}

// POST /api/v1/forms/{id}/theme/reset
func HandleResetTheme(w http.ResponseWriter, r *http.Request) {
	editor, ok := openEditor(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	if err := editor.ResetTheme(ctx); err != nil {
		apiutil.WriteError(w, r, err, "Failed to reset theme")
		return
	}
	writeSnapshot(w, r, http.StatusOK, editor)
}

// loadAccessibleForm fetches the form named in the path and checks the caller's workspace owns it.
func loadAccessibleForm(w http.ResponseWriter, r *http.Request) (models.Form, bool) {
	logger := log.Ctx(r.Context())

	fs := loadStore()
	if fs == nil {
		logger.Error().Msg("Form store not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return models.Form{}, false
	}
	if _, ok := apiutil.RequireSession(w, r); !ok {
		return models.Form{}, false
	}
	formID, err := apiutil.PathID(r, formIDParam)
	if err != nil {
		http.Error(w, "Invalid form ID", http.StatusBadRequest)
		return models.Form{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	form, err := fs.GetForm(ctx, formID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Form not found", http.StatusNotFound)
			return models.Form{}, false
		}
		logger.Error().Err(err).Str("form_id", formID).Msg("Failed to fetch form")
		http.Error(w, "Failed to load form", http.StatusInternalServerError)
		return models.Form{}, false
	}
	if !apiutil.RequireWorkspaceAccess(w, r, form.WorkspaceID) {
		return models.Form{}, false
	}
	return form, true
}

func openEditor(w http.ResponseWriter, r *http.Request) (*theming.Editor, bool) {
	form, ok := loadAccessibleForm(w, r)
	if !ok {
		return nil, false
	}
	editors := loadSessions()
	if editors == nil {
		log.Ctx(r.Context()).Error().Msg("Editor sessions not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	session, _ := apiutil.RequireSession(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), formQueryTimeout)
	defer cancel()

	editor, err := editors.Open(ctx, session, form.ID)
	if err != nil {
		if errors.Is(err, theming.ErrSessionsClosed) {
			http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
			return nil, false
		}
		apiutil.WriteError(w, r, err, "Failed to open theme editor")
		return nil, false
	}
	return editor, true
}

func writeSnapshot(w http.ResponseWriter, r *http.Request, status int, editor *theming.Editor) {
	if err := apiutil.WriteJSON(w, status, editor.Snapshot()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Str("form_id", editor.FormID()).Msg("Failed to write theme editor response")
	}
}

func loadStore() formStore {
	return store
}

func loadSessions() *theming.Sessions {
	return sessions
}

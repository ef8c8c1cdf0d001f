// internal/api/themes/handlers.go
package themes

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/api/apiutil"
	"github.com/tarunkumar2005/fomi/internal/models"
	"github.com/tarunkumar2005/fomi/internal/theming"
)

const (
	themeQueryTimeout = 5 * time.Second
	themeIDParam      = "id"
)

var (
	service     *theming.Service
	serviceOnce sync.Once
)

// decodeThemeRequest reads a create or update body: an exported theme document plus an
// optional scope. Every partition and every token in it is required.
func decodeThemeRequest(r *http.Request) (models.Scope, models.Theme, error) {
	data, err := apiutil.ReadBody(r)
	if err != nil {
		return "", models.Theme{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return "", models.Theme{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body", Err: err}
	}

	var scope models.Scope
	if value, ok := raw["scope"]; ok {
		if err := json.Unmarshal(value, &scope); err != nil {
			return "", models.Theme{}, apiutil.BadField("scope", "must be a string")
		}
		delete(raw, "scope")
	}

	document, err := json.Marshal(raw)
	if err != nil {
		return "", models.Theme{}, err
	}
	theme, err := models.DecodeExportedTheme(document)
	if err != nil {
		return "", models.Theme{}, err
	}
	return scope, theme, nil
}

type duplicateRequest struct {
	Name string `json:"name"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *theming.Service) {
	if s == nil {
		return
	}
	serviceOnce.Do(func() {
		service = s
	})
}

// GET /api/v1/themes
func HandleThemesList(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	catalog, err := svc.ListThemes(ctx, session)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list themes")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"themes": catalog.List()}); err != nil {
		logger.Error().Err(err).Msg("Failed to write themes list response")
	}
}

// GET /api/v1/themes/{id}
func HandleThemeDetail(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}
	themeID, err := apiutil.PathID(r, themeIDParam)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	theme, err := svc.GetTheme(ctx, session, themeID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to fetch theme")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, theme); err != nil {
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to write theme response")
	}
}

// POST /api/v1/themes
func HandleThemeCreate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}

	scope, theme, err := decodeThemeRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Rejected theme create request")
		return
	}
	if scope == "" {
		scope = models.ScopeUser
	}
	if scope == models.ScopeBuiltIn {
		http.Error(w, "Built-in themes are read-only", http.StatusForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	created, err := svc.CreateTheme(ctx, session, scope, theme)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create theme")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, created); err != nil {
		logger.Error().Err(err).Str("theme_id", created.ID).Msg("Failed to write theme create response")
	}
}

// PUT /api/v1/themes/{id}
func HandleThemeUpdate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}
	themeID, err := apiutil.PathID(r, themeIDParam)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	scope, theme, err := decodeThemeRequest(r)
	if err == nil && scope != "" {
		err = apiutil.BadField("scope", "cannot be updated")
	}
	if err != nil {
		apiutil.WriteError(w, r, err, "Rejected theme update request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	updated, err := svc.UpdateTheme(ctx, session, themeID, theme)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update theme")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, updated); err != nil {
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to write theme update response")
	}
}

// DELETE /api/v1/themes/{id}
func HandleThemeDelete(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}
	themeID, err := apiutil.PathID(r, themeIDParam)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	if err := svc.DeleteTheme(ctx, session, themeID); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete theme")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/themes/{id}/duplicate
func HandleThemeDuplicate(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}
	themeID, err := apiutil.PathID(r, themeIDParam)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	// The body is optional; without a name the copy is called "Copy of <name>".
	var req duplicateRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	copied, err := svc.DuplicateTheme(ctx, session, themeID, req.Name)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to duplicate theme")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, copied); err != nil {
		logger.Error().Err(err).Str("theme_id", copied.ID).Msg("Failed to write theme duplicate response")
	}
}

// GET /api/v1/themes/{id}/export
func HandleThemeExport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}
	themeID, err := apiutil.PathID(r, themeIDParam)
	if err != nil {
		http.Error(w, "Invalid theme ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	data, err := svc.ExportTheme(ctx, session, themeID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to export theme")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+themeID+`.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Error().Err(err).Str("theme_id", themeID).Msg("Failed to write theme export")
	}
}

// POST /api/v1/themes/import
func HandleThemeImport(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	svc := loadService()
	if svc == nil {
		logger.Error().Msg("Theme service not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	session, ok := apiutil.RequireSession(w, r)
	if !ok {
		return
	}

	data, err := apiutil.ReadBody(r)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), themeQueryTimeout)
	defer cancel()

	imported, err := svc.ImportTheme(ctx, session, data)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to import theme")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, imported); err != nil {
		logger.Error().Err(err).Str("theme_id", imported.ID).Msg("Failed to write theme import response")
	}
}

func loadService() *theming.Service {
	return service
}

package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/api/authz"
	"github.com/tarunkumar2005/fomi/internal/models"
	"github.com/tarunkumar2005/fomi/internal/theming"
)

// maxBodyBytes bounds JSON request bodies. Themes are a handful of small partitions.
const maxBodyBytes = 1 << 20

// FieldError reports a single rejected request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// HandlerError carries the status and client message a handler should answer with.
type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// BadField builds a 400 for a rejected request field.
func BadField(field, reason string) HandlerError {
	fieldErr := FieldError{Field: field, Reason: reason}
	return HandlerError{Status: http.StatusBadRequest, Message: fieldErr.Error(), Err: fieldErr}
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// ReadBody returns the raw request body, bounded like DecodeJSON.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("request body too large")
	}
	return data, nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RequireSession turns the authenticated caller into a theming session, writing a
// 401 and returning false when there is none.
func RequireSession(w http.ResponseWriter, r *http.Request) (theming.Session, bool) {
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		log.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Access denied: unauthenticated")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return theming.Session{}, false
	}
	return theming.Session{UserID: user.UserID, WorkspaceID: user.WorkspaceID}, true
}

// RequireWorkspaceAccess writes a 403 and returns false unless the caller acts in workspaceID.
func RequireWorkspaceAccess(w http.ResponseWriter, r *http.Request, workspaceID string) bool {
	logger := log.Ctx(r.Context())
	if err := authz.RequireWorkspace(r.Context(), workspaceID); err != nil {
		switch {
		case errors.Is(err, authz.ErrUnauthenticated):
			logger.Warn().Str("workspace_id", workspaceID).Msg("Workspace access denied: unauthenticated")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			logger.Warn().
				Str("workspace_id", workspaceID).
				Str("user_id", authz.UserIDFromContext(r.Context())).
				Msg("Workspace access denied: forbidden")
			http.Error(w, "Forbidden", http.StatusForbidden)
		default:
			logger.Error().Str("workspace_id", workspaceID).Err(err).Msg("Workspace access denied: error")
			http.Error(w, "Failed to authorize request", http.StatusInternalServerError)
		}
		return false
	}
	return true
}

// StatusForError maps domain errors onto HTTP status codes and client-safe messages.
func StatusForError(err error) (int, string) {
	var handlerErr HandlerError
	var fieldErr FieldError
	switch {
	case errors.As(err, &handlerErr):
		return handlerErr.Status, handlerErr.Message
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fieldErr.Error()
	case errors.Is(err, theming.ErrInvalidTheme):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, theming.ErrInvalidSession), errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, theming.ErrBuiltInReadOnly):
		return http.StatusForbidden, "Built-in themes cannot be modified"
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, theming.ErrThemeNotFound), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, theming.ErrThemeLimit):
		return http.StatusConflict, "Theme limit reached"
	case errors.Is(err, theming.ErrEditorClosed):
		return http.StatusConflict, "Editor session closed, retry the request"
	case errors.Is(err, theming.ErrLoadThemes):
		return http.StatusInternalServerError, theming.ErrLoadThemes.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// WriteError logs err and writes the mapped status.
func WriteError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, message := StatusForError(err)
	event := log.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = log.Ctx(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg(msg)
	http.Error(w, message, status)
}

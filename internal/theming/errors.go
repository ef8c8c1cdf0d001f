package theming

import (
	"errors"

	"github.com/tarunkumar2005/fomi/internal/models"
)

var (
	ErrLoadThemes      = errors.New("Failed to load themes")
	ErrThemeNotFound   = errors.New("theme not found")
	ErrBuiltInReadOnly = errors.New("built-in themes are read-only")
	ErrThemeLimit      = errors.New("theme limit reached")
	ErrInvalidSession  = errors.New("invalid session")
	ErrEditorClosed    = errors.New("editor is closed")

	// ErrInvalidTheme is shared with the models layer so decode and validation failures match either way.
	ErrInvalidTheme = models.ErrInvalidTheme
)

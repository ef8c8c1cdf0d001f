package theming

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

var ErrSessionsClosed = errors.New("editor sessions are shut down")

type SessionsConfig struct {
	Store         EditorStore
	Library       *Service
	Clock         clockwork.Clock
	AutosaveDelay time.Duration
	SaveTimeout   time.Duration
	Metrics       *Metrics
}

type sessionKey struct {
	userID string
	formID string
}

// Sessions keeps one live editor per user and form.
type Sessions struct {
	cfg SessionsConfig

	mu      sync.Mutex
	editors map[sessionKey]*Editor
	closed  bool
}

func NewSessions(cfg SessionsConfig) *Sessions {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Sessions{cfg: cfg, editors: make(map[sessionKey]*Editor)}
}

// Open returns the user's live editor for formID, loading a new one if needed.
func (s *Sessions) Open(ctx context.Context, session Session, formID string) (*Editor, error) {
	key := sessionKey{userID: session.UserID, formID: formID}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionsClosed
	}
	if editor, ok := s.editors[key]; ok && editor.Session() == session {
		s.mu.Unlock()
		return editor, nil
	}
	s.mu.Unlock()

	editor, err := NewEditor(ctx, EditorConfig{
		Session:       session,
		FormID:        formID,
		Store:         s.cfg.Store,
		Library:       s.cfg.Library,
		Clock:         s.cfg.Clock,
		AutosaveDelay: s.cfg.AutosaveDelay,
		SaveTimeout:   s.cfg.SaveTimeout,
		Metrics:       s.cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		editor.Close()
		return nil, ErrSessionsClosed
	}
	// Another request may have loaded the same editor meanwhile; keep the first one.
	if existing, ok := s.editors[key]; ok && existing.Session() == session {
		s.mu.Unlock()
		editor.Close()
		return existing, nil
	}
	replaced := s.editors[key]
	s.editors[key] = editor
	n := len(s.editors)
	s.mu.Unlock()

	// The user switched workspace; the old editor's catalog no longer applies.
	if replaced != nil {
		s.retire(ctx, replaced)
	}
	s.cfg.Metrics.setOpenSessions(n)
	return editor, nil
}

// Sweep flushes and closes editors idle for longer than idle. Editors whose flush fails stay
// open so their changes are not lost. It returns how many were closed.
func (s *Sessions) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := s.cfg.Clock.Now().Add(-idle)

	s.mu.Lock()
	stale := make(map[sessionKey]*Editor)
	for key, editor := range s.editors {
		if editor.LastActive().Before(cutoff) {
			stale[key] = editor
		}
	}
	s.mu.Unlock()

	closed := 0
	for key, editor := range stale {
		if err := editor.Flush(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("form_id", key.formID).Str("user_id", key.userID).Msg("Failed to flush idle theme editor")
			continue
		}

		s.mu.Lock()
		// Skip editors that were used again while flushing.
		if current, ok := s.editors[key]; !ok || current != editor || !editor.LastActive().Before(cutoff) {
			s.mu.Unlock()
			continue
		}
		delete(s.editors, key)
		s.mu.Unlock()

		editor.Close()
		closed++
	}

	s.mu.Lock()
	n := len(s.editors)
	s.mu.Unlock()
	s.cfg.Metrics.setOpenSessions(n)

	if closed > 0 {
		log.Ctx(ctx).Info().Int("closed", closed).Int("open", n).Msg("Swept idle theme editors")
	}
	return closed
}

// Close flushes and closes every editor. Open fails afterwards.
func (s *Sessions) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	editors := s.editors
	s.editors = make(map[sessionKey]*Editor)
	s.mu.Unlock()

	var errs []error
	for key, editor := range editors {
		if err := editor.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("form %s: %w", key.formID, err))
		}
		editor.Close()
	}
	s.cfg.Metrics.setOpenSessions(0)
	return errors.Join(errs...)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.editors)
}

func (s *Sessions) retire(ctx context.Context, editor *Editor) {
	if err := editor.Flush(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("form_id", editor.FormID()).Msg("Failed to flush replaced theme editor")
	}
	editor.Close()
}

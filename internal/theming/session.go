package theming

import (
	"fmt"
	"strings"
)

// Session is the acting identity. It scopes which custom themes are visible and where new ones are stored.
type Session struct {
	UserID      string
	WorkspaceID string
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidSession)
	}
	if strings.TrimSpace(s.WorkspaceID) == "" {
		return fmt.Errorf("%w: workspace id is required", ErrInvalidSession)
	}
	return nil
}

package authz

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

const (
	SourceClerk     = "clerk"
	SourceDevHeader = "dev_header"
)

// personalWorkspacePrefix names the workspace of a user who has no active organization.
const personalWorkspacePrefix = "personal_"

type AuthUser struct {
	UserID      string
	WorkspaceID string
	// Source records how the identity was established, for logging.
	Source string
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// UserIDFromContext returns the authenticated user id, or "" when there is none.
func UserIDFromContext(ctx context.Context) string {
	if user := UserFromContext(ctx); user != nil {
		return user.UserID
	}
	return ""
}

// PersonalWorkspaceID is the workspace used when a user acts outside any organization.
func PersonalWorkspaceID(userID string) string {
	return personalWorkspacePrefix + userID
}

// NewAuthUser builds an identity, falling back to the user's personal workspace when
// workspaceID is empty.
func NewAuthUser(userID, workspaceID, source string) *AuthUser {
	userID = strings.TrimSpace(userID)
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		workspaceID = PersonalWorkspaceID(userID)
	}
	return &AuthUser{UserID: userID, WorkspaceID: workspaceID, Source: source}
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil || user.UserID == "" {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireWorkspace checks that the caller is acting in workspaceID.
func RequireWorkspace(ctx context.Context, workspaceID string) error {
	user, err := RequireUser(ctx)
	if err != nil {
		return err
	}
	if workspaceID == "" || user.WorkspaceID != workspaceID {
		return ErrForbidden
	}
	return nil
}

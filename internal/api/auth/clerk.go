package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/rs/zerolog/log"

	"github.com/tarunkumar2005/fomi/internal/api/authz"
	"github.com/tarunkumar2005/fomi/internal/config"
)

const (
	sessionCookieName = "__session"
	devUserHeader     = "X-Fomi-User"
	devWorkspace      = "X-Fomi-Workspace"
)

var ErrInvalidToken = errors.New("invalid session token")

// clerkInitialized indicates whether the Clerk SDK has been initialized
var clerkInitialized bool

// allowDevHeaders trusts the X-Fomi-* identity headers. Development only.
var allowDevHeaders bool

var verifyToken = func(ctx context.Context, token string) (*clerk.SessionClaims, error) {
	return jwt.Verify(ctx, &jwt.VerifyParams{Token: token})
}

// Init configures request authentication from cfg.
func Init(cfg *config.Config) {
	InitClerk(cfg.Auth.ClerkSecretKey)
	allowDevHeaders = cfg.Auth.AllowDevHeaders
	if allowDevHeaders {
		log.Warn().Msg("Development identity headers are trusted")
	}
}

// InitClerk initializes Clerk SDK with the secret key
func InitClerk(secretKey string) {
	if secretKey == "" {
		log.Warn().Msg("Clerk secret key not configured")
		return
	}
	clerk.SetKey(secretKey)
	clerkInitialized = true
	log.Info().Msg("Clerk SDK initialized")
}

// UserFromRequest resolves the caller. A Clerk session token is taken from the
// Authorization bearer header or the __session cookie; the active organization
// becomes the workspace. It returns nil, nil for anonymous requests and
// ErrInvalidToken when a token is present but fails verification.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	if token := sessionToken(r); token != "" && clerkInitialized {
		claims, err := verifyToken(r.Context(), token)
		if err != nil {
			return nil, errors.Join(ErrInvalidToken, err)
		}
		if claims == nil || claims.Subject == "" {
			return nil, ErrInvalidToken
		}
		return authz.NewAuthUser(claims.Subject, claims.ActiveOrganizationID, authz.SourceClerk), nil
	}

	if allowDevHeaders {
		if userID := strings.TrimSpace(r.Header.Get(devUserHeader)); userID != "" {
			return authz.NewAuthUser(userID, r.Header.Get(devWorkspace), authz.SourceDevHeader), nil
		}
	}

	return nil, nil
}

func sessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

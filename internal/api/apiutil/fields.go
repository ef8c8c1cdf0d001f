package apiutil

import (
	"fmt"
	"net/http"
	"strings"
)

const maxIDLength = 64

// PathID reads a path value and checks it looks like a theme or form id.
func PathID(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	if raw == "" {
		return "", FieldError{Field: name, Reason: "is required"}
	}
	if len(raw) > maxIDLength {
		return "", FieldError{Field: name, Reason: fmt.Sprintf("must be %d characters or fewer", maxIDLength)}
	}
	for _, c := range raw {
		if !isIDRune(c) {
			return "", FieldError{Field: name, Reason: "contains invalid characters"}
		}
	}
	return raw, nil
}

func isIDRune(c rune) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

package handlers

import (
	"net/http"
	"strconv"
	"strings"
)

// Validation limits.
const (
	MaxUsernameLength = 50
	MaxPasswordLength = 128
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// SanitizeUsername trims the username; returns empty if over max length.
// Passwords are never trimmed, trailing whitespace is significant.
func SanitizeUsername(username string) string {
	s := strings.TrimSpace(username)
	if len(s) > MaxUsernameLength {
		return ""
	}
	return s
}

// parseListParams reads limit/offset query parameters with bounds applied.
func parseListParams(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
			if limit > maxListLimit {
				limit = maxListLimit
			}
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

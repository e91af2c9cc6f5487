package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

var (
	errMissingAuth = errors.New("missing Authorization header")
	errBadScheme   = errors.New("authorization scheme must be Bearer")
	errEmptyKey    = errors.New("missing API key")
)

// ValidateAPIKey reports whether provided equals configured in constant time.
// Empty keys never match.
func ValidateAPIKey(provided, configured string) bool {
	if provided == "" || configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) == 1
}

// ExtractAPIKey returns the key of an "Authorization: Bearer <key>" header.
func ExtractAPIKey(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuth
	}
	key, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", errBadScheme
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", errEmptyKey
	}
	return key, nil
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, err := ExtractAPIKey(r)
		if err == nil && !ValidateAPIKey(key, s.config.APIKey) {
			err = errors.New("invalid API key")
		}
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

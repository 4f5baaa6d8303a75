package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"dompet/internal/cache"
)

const (
	sessionCacheSize = 1024
	sessionCacheTTL  = 5 * time.Minute
)

// Registry maps static bearer tokens to owner identities. Resolved tokens
// are kept in an LRU session cache so repeated requests skip the
// constant-time scan.
type Registry struct {
	tokens   map[string]string
	sessions *cache.LRU[string]
}

// ParseTokenPairs parses "token:owner" pairs separated by commas.
func ParseTokenPairs(raw string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, owner, ok := strings.Cut(pair, ":")
		if !ok || token == "" || owner == "" {
			return nil, fmt.Errorf("malformed token pair %q, want token:owner", pair)
		}
		tokens[token] = owner
	}
	return tokens, nil
}

func NewRegistry(tokens map[string]string) *Registry {
	return &Registry{
		tokens:   tokens,
		sessions: cache.NewLRU[string](sessionCacheSize, sessionCacheTTL),
	}
}

// Sessions exposes the session cache for cleanup registration.
func (r *Registry) Sessions() *cache.LRU[string] {
	return r.sessions
}

// Resolve returns the owner identity for a bearer token.
func (r *Registry) Resolve(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	if owner, ok := r.sessions.Get(token); ok {
		return owner, nil
	}
	// Compare against every registered token so timing does not reveal
	// which prefix matched.
	var owner string
	found := 0
	for candidate, candidateOwner := range r.tokens {
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1 {
			owner = candidateOwner
			found = 1
		}
	}
	if found == 0 {
		return "", ErrUnauthorized
	}
	r.sessions.Set(token, owner)
	return owner, nil
}

package auth

import "strings"

// HeaderAPIKey is the request header carrying the API key
const HeaderAPIKey = "X-API-Key"

// Guard decides whether a request path needs an API key and whether a
// presented key is valid. Paths not covered by any protected prefix pass
// without a key.
type Guard struct {
	keys     map[string]struct{}
	prefixes []string
}

// NewGuard builds a guard from the configured API keys and protected route
// prefixes. Prefix order is preserved.
func NewGuard(apiKeys, protectedRoutes []string) *Guard {
	keys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		keys[k] = struct{}{}
	}

	prefixes := make([]string, len(protectedRoutes))
	copy(prefixes, protectedRoutes)

	return &Guard{keys: keys, prefixes: prefixes}
}

// MatchPrefix returns the first protected prefix of path, in configured order
func (g *Guard) MatchPrefix(path string) (string, bool) {
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(path, prefix) {
			return prefix, true
		}
	}
	return "", false
}

// ValidKey reports whether key is one of the configured API keys.
// An empty key is never valid.
func (g *Guard) ValidKey(key string) bool {
	if key == "" {
		return false
	}
	_, ok := g.keys[key]
	return ok
}

// Allow reports whether a request for path carrying key may proceed, along
// with the protected prefix that decided it ("" when the path is unprotected).
func (g *Guard) Allow(path, key string) (string, bool) {
	prefix, protected := g.MatchPrefix(path)
	if !protected {
		return "", true
	}
	return prefix, g.ValidKey(key)
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuard_Allow(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		prefixes []string
		path     string
		key      string
		want     bool
	}{
		{
			name: "no protected prefixes passes without key",
			keys: []string{"secret1"},
			path: "/v1/jobs",
			want: true,
		},
		{
			name: "no protected prefixes ignores a wrong key",
			keys: []string{"secret1"},
			path: "/v1/jobs",
			key:  "wrong",
			want: true,
		},
		{
			name:     "unmatched path passes without key",
			keys:     []string{"secret1"},
			prefixes: []string{"/v1"},
			path:     "/",
			want:     true,
		},
		{
			name:     "protected path without key",
			keys:     []string{"secret1"},
			prefixes: []string{"/v1"},
			path:     "/v1/jobs",
			want:     false,
		},
		{
			name:     "protected path with wrong key",
			keys:     []string{"secret1"},
			prefixes: []string{"/v1"},
			path:     "/v1/jobs",
			key:      "secret2",
			want:     false,
		},
		{
			name:     "protected path with valid key",
			keys:     []string{"secret1", "secret2"},
			prefixes: []string{"/v1"},
			path:     "/v1/jobs",
			key:      "secret2",
			want:     true,
		},
		{
			name:     "literal prefix match without segment boundary",
			keys:     []string{"secret1"},
			prefixes: []string{"/v1"},
			path:     "/v10/jobs",
			want:     false,
		},
		{
			name:     "root prefix protects everything",
			keys:     []string{"secret1"},
			prefixes: []string{"/"},
			path:     "/",
			want:     false,
		},
		{
			name:     "empty key set rejects every protected request",
			prefixes: []string{"/v1"},
			path:     "/v1/jobs",
			key:      "",
			want:     false,
		},
		{
			name:     "matching is case sensitive",
			keys:     []string{"secret1"},
			prefixes: []string{"/v1"},
			path:     "/V1/jobs",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuard(tt.keys, tt.prefixes)
			_, allowed := g.Allow(tt.path, tt.key)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestGuard_MatchPrefix_FirstMatchWins(t *testing.T) {
	g := NewGuard(nil, []string{"/admin", "/v1", "/v1/jobs"})

	prefix, ok := g.MatchPrefix("/v1/jobs")
	assert.True(t, ok)
	assert.Equal(t, "/v1", prefix)

	_, ok = g.MatchPrefix("/health")
	assert.False(t, ok)
}

func TestNewGuard_CopiesPrefixes(t *testing.T) {
	prefixes := []string{"/v1"}
	g := NewGuard([]string{"k"}, prefixes)
	prefixes[0] = "/other"

	_, ok := g.MatchPrefix("/v1/jobs")
	assert.True(t, ok)
}

func TestGuard_Allow_ReportsDecidingPrefix(t *testing.T) {
	g := NewGuard([]string{"secret1"}, []string{"/admin", "/v1"})

	prefix, allowed := g.Allow("/v1/jobs", "secret1")
	assert.True(t, allowed)
	assert.Equal(t, "/v1", prefix)

	prefix, allowed = g.Allow("/v1/jobs", "")
	assert.False(t, allowed)
	assert.Equal(t, "/v1", prefix)

	prefix, allowed = g.Allow("/", "")
	assert.True(t, allowed)
	assert.Empty(t, prefix)
}

package threadly_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	threadly "github.com/goliatone/threadly-client"
)

func TestDecodeIdentity(t *testing.T) {
	t.Run("reads sub, email, and id claims", func(t *testing.T) {
		token := makeToken(t, map[string]any{
			"sub":   "peterparker",
			"email": "peter@dailybugle.com",
			"id":    "550e8400-e29b-41d4-a716-446655440000",
		})

		identity := threadly.DecodeIdentity(token)
		assert.Equal(t, "peterparker", identity.Username)
		assert.Equal(t, "peter@dailybugle.com", identity.Email)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", identity.ID)
		assert.False(t, identity.Enriched)
	})

	t.Run("falls back to username claim when sub is absent", func(t *testing.T) {
		token := makeToken(t, map[string]any{"username": "maryjane"})

		identity := threadly.DecodeIdentity(token)
		assert.Equal(t, "maryjane", identity.Username)
	})

	t.Run("falls back to userId claim when id is absent", func(t *testing.T) {
		token := makeToken(t, map[string]any{
			"sub":    "maryjane",
			"userId": "abc-123",
		})

		identity := threadly.DecodeIdentity(token)
		assert.Equal(t, "abc-123", identity.ID)
	})

	t.Run("defaults when claims are missing", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": 1700000000})

		identity := threadly.DecodeIdentity(token)
		assert.Equal(t, "user", identity.Username)
		assert.Empty(t, identity.Email)
		assert.Empty(t, identity.ID)
	})

	t.Run("non-string sub falls through to the default", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": 42})

		identity := threadly.DecodeIdentity(token)
		assert.Equal(t, "user", identity.Username)
	})
}

func TestDecodeIdentityNeverFails(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a token", "garbage"},
		{"two segments", "aGVhZGVy.cGF5bG9hZA"},
		{"invalid base64 payload", "aGVhZGVy.!!!not-base64!!!.c2ln"},
		{"payload is not json", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.c2ln"},
		{"oversized garbage", strings.Repeat("x", 10_000)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			identity := threadly.DecodeIdentity(tc.token)
			assert.Equal(t, threadly.Identity{Username: "user"}, identity)
		})
	}
}

func TestDecodeIdentityIsDeterministic(t *testing.T) {
	token := makeToken(t, map[string]any{"sub": "gwen", "email": "gwen@example.com"})

	first := threadly.DecodeIdentity(token)
	second := threadly.DecodeIdentity(token)
	assert.Equal(t, first, second)
}

func TestTokenExpiry(t *testing.T) {
	t.Run("reads exp as seconds since epoch", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "gwen", "exp": 1735689600})

		expiry, ok := threadly.TokenExpiry(token)
		assert.True(t, ok)
		assert.True(t, expiry.Equal(time.Unix(1735689600, 0)))
	})

	t.Run("reads exp encoded as a string", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": "1735689600"})

		expiry, ok := threadly.TokenExpiry(token)
		assert.True(t, ok)
		assert.True(t, expiry.Equal(time.Unix(1735689600, 0)))
	})

	t.Run("absent exp reports not ok", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "gwen"})

		_, ok := threadly.TokenExpiry(token)
		assert.False(t, ok)
	})

	t.Run("unreadable exp reports not ok", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": true})

		_, ok := threadly.TokenExpiry(token)
		assert.False(t, ok)
	})

	t.Run("malformed token reports not ok", func(t *testing.T) {
		_, ok := threadly.TokenExpiry("not-a-token")
		assert.False(t, ok)
	})
}

func TestIsTokenExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("future expiry is not expired", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": now.Add(time.Hour).Unix()})
		assert.False(t, threadly.IsTokenExpired(token, now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": now.Add(-time.Hour).Unix()})
		assert.True(t, threadly.IsTokenExpired(token, now))
	})

	t.Run("expiry equal to now is expired", func(t *testing.T) {
		token := makeToken(t, map[string]any{"exp": now.Unix()})
		assert.True(t, threadly.IsTokenExpired(token, now))
	})

	t.Run("token without exp never expires by this check", func(t *testing.T) {
		token := makeToken(t, map[string]any{"sub": "gwen"})
		assert.False(t, threadly.IsTokenExpired(token, now))
	})

	t.Run("malformed token never expires by this check", func(t *testing.T) {
		assert.False(t, threadly.IsTokenExpired("garbage", now))
	})
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain token", "abc.def.ghi", "abc.def.ghi"},
		{"quoted response body", `"abc.def.ghi"`, "abc.def.ghi"},
		{"whitespace and quotes", "  \"abc.def.ghi\"\n", "abc.def.ghi"},
		{"empty", "", ""},
		{"only quotes", `""`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, threadly.NormalizeToken(tc.raw))
		})
	}
}

package threadly

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// claimsParser decodes token payloads without checking the signature. The
// backend is the only party that can verify tokens; the client just reads
// claims, and the decoded values must never drive authorization decisions.
var claimsParser = jwt.NewParser()

// DecodeIdentity extracts identity claims from a session token. It never
// fails: any malformed input yields the default identity so a login is never
// blocked on a token the client cannot read.
func DecodeIdentity(token string) Identity {
	claims, ok := parseClaims(token)
	if !ok {
		return defaultIdentity()
	}

	username := claimString(claims, "sub", "username")
	if username == "" {
		username = defaultUsername
	}

	return Identity{
		Username: username,
		Email:    claimString(claims, "email"),
		ID:       claimString(claims, "id", "userId"),
	}
}

// TokenExpiry reads the exp claim (seconds since epoch). ok is false when the
// claim is absent or unparsable; such tokens stay valid until the server
// rejects a request.
func TokenExpiry(token string) (time.Time, bool) {
	claims, ok := parseClaims(token)
	if !ok {
		return time.Time{}, false
	}

	raw, ok := claims["exp"]
	if !ok {
		return time.Time{}, false
	}

	seconds, ok := numericClaim(raw)
	if !ok {
		return time.Time{}, false
	}

	return time.UnixMilli(int64(seconds * 1000)), true
}

// IsTokenExpired reports whether the token carries an expiry at or before
// now. Tokens without a readable exp claim are never expired by this check.
func IsTokenExpired(token string, now time.Time) bool {
	expiry, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !expiry.After(now)
}

// NormalizeToken strips whitespace and surrounding quote characters from a
// raw token response body.
func NormalizeToken(raw string) string {
	return strings.Trim(strings.TrimSpace(raw), `"`)
}

func parseClaims(token string) (jwt.MapClaims, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if raw, ok := claims[key]; ok {
			if s, ok := raw.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func numericClaim(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

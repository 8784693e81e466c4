package threadly

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    SessionState
		to      SessionState
		allowed bool
	}{
		{"anonymous to authenticating", StateAnonymous, StateAuthenticating, true},
		{"anonymous to authenticated", StateAnonymous, StateAuthenticated, true},
		{"authenticating to authenticated", StateAuthenticating, StateAuthenticated, true},
		{"authenticating back to anonymous", StateAuthenticating, StateAnonymous, true},
		{"authenticated to expired", StateAuthenticated, StateExpired, true},
		{"authenticated to anonymous", StateAuthenticated, StateAnonymous, true},
		{"expired to anonymous", StateExpired, StateAnonymous, true},
		{"anonymous to expired", StateAnonymous, StateExpired, false},
		{"expired to authenticated", StateExpired, StateAuthenticated, false},
		{"authenticated to authenticating", StateAuthenticated, StateAuthenticating, false},
		{"unknown state", SessionState("bogus"), StateAnonymous, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, canTransition(tc.from, tc.to))
		})
	}
}

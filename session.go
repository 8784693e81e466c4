package threadly

// SessionState enumerates the client session lifecycle.
type SessionState string

const (
	StateAnonymous      SessionState = "anonymous"
	StateAuthenticating SessionState = "authenticating"
	StateAuthenticated  SessionState = "authenticated"
	StateExpired        SessionState = "expired"
)

// sessionTransitions is the lifecycle table. Rehydration and external login
// move Anonymous straight to Authenticated; password login goes through
// Authenticating. Every state can fall back to Anonymous, which is what makes
// Logout safe from anywhere.
var sessionTransitions = map[SessionState]map[SessionState]struct{}{
	StateAnonymous: {
		StateAuthenticating: {},
		StateAuthenticated:  {},
	},
	StateAuthenticating: {
		StateAuthenticated: {},
		StateAnonymous:     {},
	},
	StateAuthenticated: {
		StateExpired:   {},
		StateAnonymous: {},
	},
	StateExpired: {
		StateAnonymous: {},
	},
}

func canTransition(from, to SessionState) bool {
	if allowed, ok := sessionTransitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

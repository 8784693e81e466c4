package threadly

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Navigator is the seam between the session lifecycle and whatever surface
// renders it. Forced logouts and expiry ask the Navigator to move the user
// back to the login entry point instead of touching UI concerns directly.
type Navigator interface {
	NavigateToLogin()
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func()

func (f NavigatorFunc) NavigateToLogin() {
	if f != nil {
		f()
	}
}

// AuthAPI is the slice of the Threadly REST surface the session manager
// needs. Login returns the raw response body; token normalization happens in
// the manager because the backend sometimes wraps the token in quotes.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, req RegisterRequest) error
}

// ProfileFetcher retrieves a user profile. Used for identity enrichment and
// avatar resolution.
type ProfileFetcher interface {
	GetUserProfile(ctx context.Context, username string) (Profile, error)
}

// VoteSender issues the network request backing an optimistic vote.
type VoteSender interface {
	Vote(ctx context.Context, postID string, choice VoteType) error
}

// FollowSender issues the network request backing an optimistic follow toggle.
type FollowSender interface {
	FollowUser(ctx context.Context, userID string) error
}

// Config holds client options.
type Config interface {
	GetBaseURL() string
	GetBackendURL() string
	GetStoragePath() string
	GetRequestTimeout() time.Duration
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] THREADLY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] THREADLY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] THREADLY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] THREADLY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

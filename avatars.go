package threadly

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// AvatarResolver memoizes profile-image lookups per username for the lifetime
// of the process. Concurrent callers for the same uncached username share one
// underlying request; a failed lookup caches the empty string so it is not
// retried on every render.
type AvatarResolver struct {
	fetcher ProfileFetcher
	logger  Logger

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]string
}

// AvatarOption customizes resolver construction.
type AvatarOption func(*AvatarResolver)

// WithAvatarLogger overrides the default printf logger.
func WithAvatarLogger(logger Logger) AvatarOption {
	return func(r *AvatarResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewAvatarResolver(fetcher ProfileFetcher, opts ...AvatarOption) *AvatarResolver {
	r := &AvatarResolver{
		fetcher: fetcher,
		logger:  defLogger{},
		cache:   map[string]string{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	return r
}

// Resolve returns the profile image URL for a username, or the empty string
// when the user has no avatar or the lookup failed. The result is cached
// either way and authoritative once populated.
func (r *AvatarResolver) Resolve(ctx context.Context, username string) string {
	if username == "" {
		return ""
	}

	if url, ok := r.Cached(username); ok {
		return url
	}

	result, _, _ := r.group.Do(username, func() (any, error) {
		if url, ok := r.Cached(username); ok {
			return url, nil
		}

		url := ""
		profile, err := r.fetcher.GetUserProfile(ctx, username)
		if err != nil {
			r.logger.Debug("avatar lookup failed for %s: %v", username, err)
		} else {
			url = profile.ProfileImageURL
		}

		r.mu.Lock()
		r.cache[username] = url
		r.mu.Unlock()

		return url, nil
	})

	return result.(string)
}

// Cached peeks at the cache without triggering a lookup. ok is false when the
// username was never resolved.
func (r *AvatarResolver) Cached(username string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	url, ok := r.cache[username]
	return url, ok
}

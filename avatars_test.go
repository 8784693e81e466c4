package threadly_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	threadly "github.com/goliatone/threadly-client"
)

// blockingFetcher counts lookups and holds them until released.
type blockingFetcher struct {
	calls   atomic.Int64
	release chan struct{}
	profile threadly.Profile
	err     error
}

func newBlockingFetcher(profile threadly.Profile, err error) *blockingFetcher {
	return &blockingFetcher{release: make(chan struct{}), profile: profile, err: err}
}

func (f *blockingFetcher) GetUserProfile(_ context.Context, _ string) (threadly.Profile, error) {
	f.calls.Add(1)
	<-f.release
	return f.profile, f.err
}

func TestAvatarResolver(t *testing.T) {
	t.Run("resolves and caches the profile image", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{ProfileImageURL: "https://cdn.example.com/gwen.png"}, nil)
		close(fetcher.release)
		resolver := threadly.NewAvatarResolver(fetcher, threadly.WithAvatarLogger(testLogger{t}))

		assert.Equal(t, "https://cdn.example.com/gwen.png", resolver.Resolve(context.Background(), "gwen"))
		assert.Equal(t, "https://cdn.example.com/gwen.png", resolver.Resolve(context.Background(), "gwen"))
		assert.EqualValues(t, 1, fetcher.calls.Load(), "second resolve must hit the cache")

		url, ok := resolver.Cached("gwen")
		assert.True(t, ok)
		assert.Equal(t, "https://cdn.example.com/gwen.png", url)
	})

	t.Run("concurrent resolves share one lookup", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{ProfileImageURL: "https://cdn.example.com/gwen.png"}, nil)
		resolver := threadly.NewAvatarResolver(fetcher)

		const callers = 25
		results := make([]string, callers)

		var started, done sync.WaitGroup
		started.Add(callers)
		done.Add(callers)
		for i := 0; i < callers; i++ {
			go func(i int) {
				defer done.Done()
				started.Done()
				results[i] = resolver.Resolve(context.Background(), "gwen")
			}(i)
		}

		started.Wait()
		close(fetcher.release)
		done.Wait()

		for _, url := range results {
			assert.Equal(t, "https://cdn.example.com/gwen.png", url)
		}
		assert.EqualValues(t, 1, fetcher.calls.Load(), "concurrent callers must share a single request")
	})

	t.Run("caches failed lookups as empty", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{}, goerrors.New("profile lookup failed", goerrors.CategoryOperation))
		close(fetcher.release)
		resolver := threadly.NewAvatarResolver(fetcher, threadly.WithAvatarLogger(testLogger{t}))

		assert.Empty(t, resolver.Resolve(context.Background(), "ghost"))
		assert.Empty(t, resolver.Resolve(context.Background(), "ghost"))
		assert.EqualValues(t, 1, fetcher.calls.Load(), "a failed lookup is not retried")

		url, ok := resolver.Cached("ghost")
		assert.True(t, ok, "the failure itself is cached")
		assert.Empty(t, url)
	})

	t.Run("user without an avatar caches empty", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{Username: "plain"}, nil)
		close(fetcher.release)
		resolver := threadly.NewAvatarResolver(fetcher)

		assert.Empty(t, resolver.Resolve(context.Background(), "plain"))

		_, ok := resolver.Cached("plain")
		assert.True(t, ok)
	})

	t.Run("empty username resolves empty without a lookup", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{}, nil)
		resolver := threadly.NewAvatarResolver(fetcher)

		assert.Empty(t, resolver.Resolve(context.Background(), ""))
		assert.EqualValues(t, 0, fetcher.calls.Load())

		_, ok := resolver.Cached("")
		require.False(t, ok)
	})

	t.Run("usernames are cached independently", func(t *testing.T) {
		fetcher := newBlockingFetcher(threadly.Profile{ProfileImageURL: "https://cdn.example.com/a.png"}, nil)
		close(fetcher.release)
		resolver := threadly.NewAvatarResolver(fetcher)

		resolver.Resolve(context.Background(), "a")
		resolver.Resolve(context.Background(), "b")
		assert.EqualValues(t, 2, fetcher.calls.Load())
	})
}

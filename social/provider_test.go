package social_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/goliatone/threadly-client/social"
)

func TestProvidersAuthorizationURL(t *testing.T) {
	providers := social.NewProviders("https://backend.example.com")

	assert.Equal(t,
		"https://backend.example.com/oauth2/authorization/google",
		providers.GoogleAuthorizationURL(),
	)
	assert.Equal(t,
		"https://backend.example.com/oauth2/authorization/github",
		providers.GithubAuthorizationURL(),
	)
}

func TestProvidersTrimsTrailingSlash(t *testing.T) {
	providers := social.NewProviders("https://backend.example.com/")

	assert.Equal(t,
		"https://backend.example.com/oauth2/authorization/google",
		providers.AuthorizationURL(social.ProviderGoogle),
	)
}

// Package social holds the external-login entry points: building the
// provider-hosted authorization URLs and capturing the token the backend
// hands back on the callback.
package social

import "strings"

const (
	ProviderGoogle = "google"
	ProviderGithub = "github"

	authorizationPath = "/oauth2/authorization/"
)

// Providers builds authorization URLs for the backend's external login
// endpoints. The provider performs the OAuth dance; the backend redirects
// back with an issued session token in the callback URL.
type Providers struct {
	backendURL string
}

func NewProviders(backendURL string) Providers {
	return Providers{backendURL: strings.TrimRight(backendURL, "/")}
}

// AuthorizationURL returns the provider-hosted login entry point.
func (p Providers) AuthorizationURL(provider string) string {
	return p.backendURL + authorizationPath + provider
}

func (p Providers) GoogleAuthorizationURL() string {
	return p.AuthorizationURL(ProviderGoogle)
}

func (p Providers) GithubAuthorizationURL() string {
	return p.AuthorizationURL(ProviderGithub)
}

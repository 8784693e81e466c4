package api

import (
	"context"
	"net/url"
	"strconv"

	threadly "github.com/goliatone/threadly-client"
)

// ProfileUpdate carries the editable profile fields for PUT /users/me.
type ProfileUpdate struct {
	Username        string `json:"username,omitempty"`
	Bio             string `json:"bio,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// GetUserProfile fetches a user's public profile. Used for identity
// enrichment, avatar resolution, and the profile page.
func (c *Client) GetUserProfile(ctx context.Context, username string) (threadly.Profile, error) {
	var profile threadly.Profile
	err := c.get(ctx, "/users/"+url.PathEscape(username), nil, &profile)
	return profile, err
}

// GetUserPosts pages through a user's posts.
func (c *Client) GetUserPosts(ctx context.Context, username string, page, size int) (Page[Post], error) {
	var result Page[Post]
	err := c.get(ctx, "/users/"+url.PathEscape(username)+"/posts", pageQuery(page, size), &result)
	return result, err
}

// UpdateProfile edits the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (threadly.Profile, error) {
	var profile threadly.Profile
	err := c.put(ctx, "/users/me", update, &profile)
	return profile, err
}

// FollowUser toggles the follow relationship with a user server-side. The
// same call serves follow and unfollow.
func (c *Client) FollowUser(ctx context.Context, userID string) error {
	return c.post(ctx, "/users/"+url.PathEscape(userID)+"/follow", nil, nil, nil)
}

// DeleteAccount removes the authenticated user's account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.del(ctx, "/users/me")
}

var (
	_ threadly.ProfileFetcher = (*Client)(nil)
	_ threadly.FollowSender   = (*Client)(nil)
)

func pageQuery(page, size int) url.Values {
	return url.Values{
		"page": {strconv.Itoa(page)},
		"size": {strconv.Itoa(size)},
	}
}

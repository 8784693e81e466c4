package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	threadly "github.com/goliatone/threadly-client"
)

// Post is a feed entry as returned by the posts endpoints.
type Post struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Author        string            `json:"author"`
	Tags          []string          `json:"tags"`
	UpVotes       int               `json:"upVotes"`
	DownVotes     int               `json:"downVotes"`
	UserVoteType  threadly.VoteType `json:"userVoteType"`
	CommentsCount int               `json:"commentsCount"`
	ImageURL      string            `json:"imageUrl,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// VoteState projects the post into the optimistic vote controller's target
// state, for Voter.Sync after a feed refresh.
func (p Post) VoteState() threadly.VoteState {
	return threadly.VoteState{Up: p.UpVotes, Down: p.DownVotes, Vote: p.UserVoteType}
}

// PostDraft is the payload for creating a post.
type PostDraft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Page is the backend's paginated response shape.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalPages    int `json:"totalPages"`
	TotalElements int `json:"totalElements"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

// TrendingTag is one entry of the trending tags list.
type TrendingTag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// SearchResults groups the mixed results of the search endpoint.
type SearchResults struct {
	Posts []Post             `json:"posts"`
	Users []threadly.Profile `json:"users"`
}

// GetFeed pages through the global feed.
func (c *Client) GetFeed(ctx context.Context, page, size int) (Page[Post], error) {
	var result Page[Post]
	err := c.get(ctx, "/posts", pageQuery(page, size), &result)
	return result, err
}

// GetFollowingFeed pages through posts from followed users.
func (c *Client) GetFollowingFeed(ctx context.Context, page, size int) (Page[Post], error) {
	var result Page[Post]
	err := c.get(ctx, "/posts/feed/following", pageQuery(page, size), &result)
	return result, err
}

// GetTrendingFeed fetches the trending posts. The endpoint returns a plain
// list, wrapped here into the page shape the callers already handle.
func (c *Client) GetTrendingFeed(ctx context.Context) (Page[Post], error) {
	var posts []Post
	if err := c.get(ctx, "/posts/feed/trending", nil, &posts); err != nil {
		return Page[Post]{}, err
	}

	return Page[Post]{Content: posts, TotalPages: 1}, nil
}

// CreatePost publishes a new post.
func (c *Client) CreatePost(ctx context.Context, draft PostDraft) (Post, error) {
	var post Post
	err := c.post(ctx, "/posts", nil, draft, &post)
	return post, err
}

// GetPostsByTag pages through posts carrying a tag.
func (c *Client) GetPostsByTag(ctx context.Context, tag string, page, size int) (Page[Post], error) {
	var result Page[Post]
	err := c.get(ctx, "/posts/tags/"+url.PathEscape(tag), pageQuery(page, size), &result)
	return result, err
}

// DeletePost removes one of the authenticated user's posts.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.del(ctx, "/posts/"+url.PathEscape(postID))
}

// GetTrendingTags fetches the most used tags.
func (c *Client) GetTrendingTags(ctx context.Context, limit int) ([]TrendingTag, error) {
	var tags []TrendingTag
	err := c.get(ctx, "/tags/trending", url.Values{"limit": {strconv.Itoa(limit)}}, &tags)
	return tags, err
}

// SearchAll runs a mixed post/user search.
func (c *Client) SearchAll(ctx context.Context, q string) (SearchResults, error) {
	var results SearchResults
	err := c.get(ctx, "/search", url.Values{"q": {q}}, &results)
	return results, err
}

package api

import (
	"context"
	"net/url"
	"time"
)

// Comment is one entry of a post's comment thread.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetComments fetches the comment thread of a post.
func (c *Client) GetComments(ctx context.Context, postID string) ([]Comment, error) {
	var comments []Comment
	err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/comment", nil, &comments)
	return comments, err
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID, comment string) (Comment, error) {
	payload := map[string]string{"comment": comment}

	var created Comment
	err := c.post(ctx, "/posts/"+url.PathEscape(postID)+"/comment", nil, payload, &created)
	return created, err
}

// DeleteComment removes a comment from a post.
func (c *Client) DeleteComment(ctx context.Context, postID, commentID string) error {
	return c.del(ctx, "/posts/"+url.PathEscape(postID)+"/comment/"+url.PathEscape(commentID))
}

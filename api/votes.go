package api

import (
	"context"
	"net/url"

	"github.com/goliatone/go-errors"
	threadly "github.com/goliatone/threadly-client"
)

// Vote casts or toggles a vote on a post. The server applies the toggle rule;
// the optimistic controller mirrors it locally.
func (c *Client) Vote(ctx context.Context, postID string, choice threadly.VoteType) error {
	if choice != threadly.VoteUp && choice != threadly.VoteDown {
		return errors.New("vote type must be UP or DOWN", errors.CategoryBadInput)
	}

	query := url.Values{"voteType": {string(choice)}}
	return c.post(ctx, "/posts/"+url.PathEscape(postID)+"/vote", query, nil, nil)
}

var _ threadly.VoteSender = (*Client)(nil)

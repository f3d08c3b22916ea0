package twitter

import (
	"context"
	"fmt"
)

// FetchThread fetches the TweetDetail view of focalID and returns its raw
// entries array. A non-empty cursor fetches one continuation page instead.
func (c *Client) FetchThread(ctx context.Context, focalID, cursor string, includeRecommended bool) ([]byte, error) {
	variables := map[string]any{
		"focalTweetId":                           focalID,
		"with_rux_injections":                    includeRecommended,
		"includePromotedContent":                 false,
		"withCommunity":                          true,
		"withQuickPromoteEligibilityTweetFields": false,
		"withBirdwatchNotes":                     false,
		"withVoice":                              false,
		"withV2Timeline":                         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
		variables["referrer"] = "tweet"
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": false,
	}
	ep := Endpoints[opTweetDetail]
	url, err := addGraphQLParams(ep.URL(), variables, ep.Features, fieldToggles)
	if err != nil {
		return nil, err
	}

	body, err := c.doGET(ctx, opTweetDetail, url)
	if err != nil {
		return nil, err
	}
	entries, err := parseThreadEntries(body)
	if err != nil {
		return nil, &DecodeError{Endpoint: opTweetDetail, Err: err}
	}
	return entries, nil
}

// FetchSearch runs an adaptive search and returns the raw response object.
func (c *Client) FetchSearch(ctx context.Context, query string) ([]byte, error) {
	url := searchAdaptiveURL + "?" + searchParams(query).Encode()
	return c.doGET(ctx, opSearchAdaptive, url)
}

// URLToTweets reconstructs the thread a tweet permalink points into.
func (c *Client) URLToTweets(ctx context.Context, permalink string) ([]Tweet, error) {
	_, id, err := ParseTweetURL(permalink)
	if err != nil {
		return nil, err
	}
	return c.IDToTweets(ctx, id)
}

// IDToTweets reconstructs the thread around a focal tweet ID.
func (c *Client) IDToTweets(ctx context.Context, focalID string) ([]Tweet, error) {
	tweets, err := c.recon.Thread(ctx, focalID)
	if err != nil {
		return nil, fmt.Errorf("TweetDetail %s: %w", focalID, err)
	}
	return tweets, nil
}

// ContinueThread resumes a thread from a sentinel's cursor.
func (c *Client) ContinueThread(ctx context.Context, focalID, cursor string, includeRecommended bool) ([]Tweet, error) {
	tweets, err := c.recon.Continue(ctx, focalID, cursor, includeRecommended)
	if err != nil {
		return nil, fmt.Errorf("TweetDetail %s: %w", focalID, err)
	}
	return tweets, nil
}

// RecommendedTweets returns the detail view of focalID with injected
// recommendations, flattened.
func (c *Client) RecommendedTweets(ctx context.Context, focalID string) ([]Tweet, error) {
	tweets, err := c.recon.Recommended(ctx, focalID)
	if err != nil {
		return nil, fmt.Errorf("TweetDetail %s: %w", focalID, err)
	}
	return tweets, nil
}

// QueryToTweets runs a search and assembles its feed.
func (c *Client) QueryToTweets(ctx context.Context, query string) ([]Tweet, error) {
	tweets, err := c.recon.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", opSearchAdaptive, query, err)
	}
	return tweets, nil
}

package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// pageSize is the count requested per timeline page.
const pageSize = 20

// GetUserByScreenName fetches a user profile by Twitter handle.
func (c *Client) GetUserByScreenName(ctx context.Context, handle string) (*TwitterUser, error) {
	variables := map[string]any{
		"screen_name":              handle,
		"withSafetyModeUserFields": true,
	}
	body, err := c.query(ctx, "UserByScreenName", variables, nil)
	if err != nil {
		return nil, err
	}
	return parseUser(body)
}

// GetUserByID fetches a user profile by numeric rest ID.
func (c *Client) GetUserByID(ctx context.Context, userID string) (*TwitterUser, error) {
	variables := map[string]any{
		"userId":                   userID,
		"withSafetyModeUserFields": true,
	}
	body, err := c.query(ctx, "UserByRestId", variables, nil)
	if err != nil {
		return nil, err
	}
	return parseUser(body)
}

// Followers fetches one page of a user's followers.
func (c *Client) Followers(ctx context.Context, userID, cursor string) (*UserPage, error) {
	return c.userListPage(ctx, "Followers", userID, cursor)
}

// Following fetches one page of the accounts a user follows.
func (c *Client) Following(ctx context.Context, userID, cursor string) (*UserPage, error) {
	return c.userListPage(ctx, "Following", userID, cursor)
}

func (c *Client) userListPage(ctx context.Context, operation, userID, cursor string) (*UserPage, error) {
	variables := map[string]any{
		"userId":                 userID,
		"count":                  pageSize,
		"includePromotedContent": false,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.query(ctx, operation, variables, nil)
	if err != nil {
		return nil, err
	}
	users, next, err := parseUserList(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", operation, err)
	}
	return &UserPage{Users: users, Next: next}, nil
}

// UserTweets fetches one page of a user's profile timeline, retweets included.
func (c *Client) UserTweets(ctx context.Context, userID, cursor string) (*TweetPage, error) {
	variables := map[string]any{
		"userId":                                 userID,
		"count":                                  pageSize,
		"includePromotedContent":                 false,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
		"withV2Timeline":                         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.query(ctx, "UserTweets", variables, nil)
	if err != nil {
		return nil, err
	}
	return parseUserTimeline(body, userID)
}

// Likes fetches one page of tweets a user has liked.
func (c *Client) Likes(ctx context.Context, userID, cursor string) (*TweetPage, error) {
	variables := map[string]any{
		"userId":                 userID,
		"count":                  pageSize,
		"includePromotedContent": false,
		"withClientEventToken":   false,
		"withBirdwatchNotes":     false,
		"withVoice":              true,
		"withV2Timeline":         true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	body, err := c.query(ctx, "Likes", variables, nil)
	if err != nil {
		return nil, err
	}
	return parseUserTimeline(body, "")
}

// SearchTimeline fetches one page of the Latest search results for query.
func (c *Client) SearchTimeline(ctx context.Context, query, cursor string) (*TweetPage, error) {
	variables := map[string]any{
		"rawQuery":    query,
		"count":       pageSize,
		"querySource": "typed_query",
		"product":     "Latest",
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	fieldToggles := map[string]any{
		"withArticleRichContentState": false,
	}
	body, err := c.query(ctx, "SearchTimeline", variables, fieldToggles)
	if err != nil {
		return nil, err
	}
	return parseSearchTimeline(body)
}

// query runs a GraphQL GET for operation.
func (c *Client) query(ctx context.Context, operation string, variables, fieldToggles map[string]any) ([]byte, error) {
	base, err := operationURL(operation)
	if err != nil {
		return nil, err
	}
	body, err := c.doGET(ctx, operation, graphQLURL(base, variables, fieldToggles))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return body, nil
}

// graphQLURL appends the JSON-encoded query parameters x.com expects.
func graphQLURL(base string, variables, fieldToggles map[string]any) string {
	params := []struct {
		name  string
		value map[string]any
	}{
		{"variables", variables},
		{"features", timelineFeatures},
		{"fieldToggles", fieldToggles},
	}
	var b strings.Builder
	b.WriteString(base)
	sep := "?"
	for _, p := range params {
		if p.value == nil {
			continue
		}
		raw, _ := json.Marshal(p.value)
		b.WriteString(sep + p.name + "=" + queryEscapes.Replace(string(raw)))
		sep = "&"
	}
	return b.String()
}

// queryEscapes percent-encodes the JSON punctuation x.com rejects raw.
var queryEscapes = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	`"`, "%22",
	"#", "%23",
	"&", "%26",
	"'", "%27",
	"+", "%2B",
	",", "%2C",
	":", "%3A",
	"=", "%3D",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"{", "%7B",
	"|", "%7C",
	"}", "%7D",
)

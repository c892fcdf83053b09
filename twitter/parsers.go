package twitter

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// twitterTimeLayout is the created_at layout of legacy objects.
const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

type apiErrors struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e apiErrors) err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("twitter API error: %s", e.Errors[0].Message)
}

// parseUser decodes UserByScreenName and UserByRestId responses.
func parseUser(body []byte) (*TwitterUser, error) {
	var resp struct {
		apiErrors
		Data struct {
			User struct {
				Result userResult `json:"result"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return resp.Data.User.Result.user()
}

// userTimelineResponse is the shape shared by UserTweets, Likes, Followers
// and Following.
type userTimelineResponse struct {
	Data struct {
		User struct {
			Result struct {
				Timeline struct {
					Timeline timeline `json:"timeline"`
				} `json:"timeline"`
				TimelineV2 struct {
					Timeline timeline `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
}

func decodeUserTimeline(body []byte) (timeline, error) {
	var resp userTimelineResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return timeline{}, fmt.Errorf("unmarshal timeline: %w", err)
	}
	r := resp.Data.User.Result
	if len(r.Timeline.Timeline.Instructions) == 0 {
		return r.TimelineV2.Timeline, nil
	}
	return r.Timeline.Timeline, nil
}

// parseUserList decodes one Followers or Following page.
func parseUserList(body []byte) ([]*TwitterUser, string, error) {
	tl, err := decodeUserTimeline(body)
	if err != nil {
		return nil, "", err
	}
	var users []*TwitterUser
	next := tl.walk(func(it timelineItem) {
		if it.TypeName != "TimelineUser" {
			return
		}
		u, err := it.UserResults.Result.user()
		if err != nil {
			slog.Debug("skip user", slog.Any("error", err))
			return
		}
		users = append(users, u)
	})
	return users, next, nil
}

// parseUserTimeline decodes a UserTweets or Likes page. Tweets without an
// author ID are attributed to authorID.
func parseUserTimeline(body []byte, authorID string) (*TweetPage, error) {
	tl, err := decodeUserTimeline(body)
	if err != nil {
		return nil, err
	}
	return tl.tweets(authorID), nil
}

func parseSearchTimeline(body []byte) (*TweetPage, error) {
	var resp struct {
		Data struct {
			SearchByRawQuery struct {
				SearchTimeline struct {
					Timeline timeline `json:"timeline"`
				} `json:"search_timeline"`
			} `json:"search_by_raw_query"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal search timeline: %w", err)
	}
	return resp.Data.SearchByRawQuery.SearchTimeline.Timeline.tweets(""), nil
}

type timeline struct {
	Instructions []struct {
		Type    string          `json:"type"`
		Entries []timelineEntry `json:"entries"`
		// Entry is set by TimelinePinEntry and TimelineReplaceEntry.
		Entry *timelineEntry `json:"entry"`
	} `json:"instructions"`
}

type timelineEntry struct {
	EntryID string `json:"entryId"`
	Content struct {
		EntryType   string          `json:"entryType"`
		TypeName    string          `json:"__typename"`
		ItemContent json.RawMessage `json:"itemContent"`
		Items       []struct {
			Item struct {
				ItemContent json.RawMessage `json:"itemContent"`
			} `json:"item"`
		} `json:"items"`
		Value      string `json:"value"`
		CursorType string `json:"cursorType"`
	} `json:"content"`
}

type timelineItem struct {
	TypeName     string `json:"__typename"`
	TweetResults struct {
		Result tweetResult `json:"result"`
	} `json:"tweet_results"`
	UserResults struct {
		Result userResult `json:"result"`
	} `json:"user_results"`
}

// walk calls visit for each item of the timeline, module items included,
// and returns the bottom cursor.
func (tl timeline) walk(visit func(timelineItem)) (bottom string) {
	for _, in := range tl.Instructions {
		entries := in.Entries
		if in.Entry != nil {
			entries = append(entries[:len(entries):len(entries)], *in.Entry)
		}
		for _, e := range entries {
			if e.isCursor() {
				if e.Content.CursorType == "Bottom" || strings.Contains(e.EntryID, "cursor-bottom") {
					bottom = cmp.Or(e.Content.Value, bottom)
				}
				continue
			}
			for _, raw := range e.payloads() {
				var it timelineItem
				if err := json.Unmarshal(raw, &it); err != nil {
					slog.Debug("skip timeline item", slog.String("entry", e.EntryID), slog.Any("error", err))
					continue
				}
				visit(it)
			}
		}
	}
	return bottom
}

func (tl timeline) tweets(authorID string) *TweetPage {
	page := &TweetPage{}
	page.Next = tl.walk(func(it timelineItem) {
		if it.TypeName != "TimelineTweet" {
			return
		}
		t, err := it.TweetResults.Result.tweet(authorID)
		if err != nil {
			slog.Debug("skip tweet", slog.Any("error", err))
			return
		}
		page.Tweets = append(page.Tweets, t)
	})
	return page
}

func (e timelineEntry) isCursor() bool {
	return e.Content.EntryType == "TimelineTimelineCursor" || e.Content.TypeName == "TimelineTimelineCursor"
}

func (e timelineEntry) payloads() []json.RawMessage {
	var out []json.RawMessage
	if e.Content.ItemContent != nil {
		out = append(out, e.Content.ItemContent)
	}
	for _, it := range e.Content.Items {
		if it.Item.ItemContent != nil {
			out = append(out, it.Item.ItemContent)
		}
	}
	return out
}

type userResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	Core     struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
		CreatedAt  string `json:"created_at"`
	} `json:"core"`
	Location struct {
		Location string `json:"location"`
	} `json:"location"`
	Legacy struct {
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		Location        string `json:"location"`
		URL             string `json:"url"`
		Description     string `json:"description"`
		CreatedAt       string `json:"created_at"`
		FollowersCount  int    `json:"followers_count"`
		FriendsCount    int    `json:"friends_count"`
		StatusesCount   int    `json:"statuses_count"`
		FavouritesCount int    `json:"favourites_count"`
		ListedCount     int    `json:"listed_count"`
		Verified        bool   `json:"verified"`
		Protected       bool   `json:"protected"`
		ProfileImageURL string `json:"profile_image_url_https"`
	} `json:"legacy"`
	IsBlueVerified bool `json:"is_blue_verified"`
}

// Newer responses moved name, handle and join date from legacy to core.
func (r userResult) handle() string { return cmp.Or(r.Legacy.ScreenName, r.Core.ScreenName) }
func (r userResult) name() string   { return cmp.Or(r.Legacy.Name, r.Core.Name) }

func (r userResult) user() (*TwitterUser, error) {
	switch {
	case r.TypeName == "UserUnavailable":
		return nil, errors.New("user unavailable")
	case r.RestID == "":
		return nil, fmt.Errorf("user without rest_id (%s)", r.TypeName)
	}
	l := r.Legacy
	bio := strings.TrimSpace(l.Description)
	return &TwitterUser{
		ID:          r.RestID,
		Handle:      r.handle(),
		DisplayName: r.name(),
		Bio:         bio,
		Location:    cmp.Or(l.Location, r.Location.Location),
		URL:         l.URL,
		Followers:   l.FollowersCount,
		Following:   l.FriendsCount,
		TweetCount:  l.StatusesCount,
		LikeCount:   l.FavouritesCount,
		ListedCount: l.ListedCount,
		CreatedAt:   parseTwitterTime(cmp.Or(l.CreatedAt, r.Core.CreatedAt)),
		IsVerified:  l.Verified || r.IsBlueVerified,
		IsPrivate:   l.Protected,
		HasAvatar:   l.ProfileImageURL != "" && !strings.Contains(l.ProfileImageURL, "default_profile"),
		HasBio:      bio != "",
	}, nil
}

type tweetResult struct {
	TypeName string `json:"__typename"`
	RestID   string `json:"rest_id"`
	// Tweet is the payload of a TweetWithVisibilityResults wrapper.
	Tweet *tweetResult `json:"tweet"`
	Core  struct {
		UserResults struct {
			Result userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy struct {
		FullText          string `json:"full_text"`
		CreatedAt         string `json:"created_at"`
		ConversationIDStr string `json:"conversation_id_str"`
		UserIDStr         string `json:"user_id_str"`
		FavoriteCount     int    `json:"favorite_count"`
		RetweetCount      int    `json:"retweet_count"`
		QuoteCount        int    `json:"quote_count"`
		ReplyCount        int    `json:"reply_count"`
		Entities          struct {
			Hashtags []struct {
				Text string `json:"text"`
			} `json:"hashtags"`
			UserMentions []struct {
				ScreenName string `json:"screen_name"`
			} `json:"user_mentions"`
		} `json:"entities"`
		RetweetedStatusResult struct {
			Result *tweetResult `json:"result"`
		} `json:"retweeted_status_result"`
	} `json:"legacy"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

func (r tweetResult) tweet(authorID string) (*Tweet, error) {
	switch {
	case r.TypeName == "TweetWithVisibilityResults" && r.Tweet != nil:
		return r.Tweet.tweet(authorID)
	case r.TypeName == "TweetTombstone":
		return nil, errors.New("tweet tombstone")
	case r.RestID == "":
		return nil, errors.New("tweet without rest_id")
	}

	// A retweet is reported as the original tweet, marked with the retweeter.
	if orig := r.Legacy.RetweetedStatusResult.Result; orig != nil {
		if t, err := orig.tweet(""); err == nil {
			t.IsRetweet = true
			t.RetweetedBy = r.Core.UserResults.Result.handle()
			return t, nil
		}
	}

	l := r.Legacy
	author := r.Core.UserResults.Result
	views, _ := strconv.Atoi(r.Views.Count)
	t := &Tweet{
		ID:             r.RestID,
		ConversationID: l.ConversationIDStr,
		AuthorID:       cmp.Or(l.UserIDStr, authorID),
		Username:       author.handle(),
		Name:           author.name(),
		Text:           l.FullText,
		CreatedAt:      parseTwitterTime(l.CreatedAt),
		Replies:        l.ReplyCount,
		Retweets:       l.RetweetCount,
		Likes:          l.FavoriteCount,
		Quotes:         l.QuoteCount,
		Views:          views,
	}
	for _, h := range l.Entities.Hashtags {
		t.Hashtags = append(t.Hashtags, "#"+h.Text)
	}
	for _, m := range l.Entities.UserMentions {
		t.Mentions = append(t.Mentions, m.ScreenName)
	}
	return t, nil
}

// parseTwitterTime returns the zero time for empty or malformed values.
func parseTwitterTime(s string) time.Time {
	t, err := time.Parse(twitterTimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

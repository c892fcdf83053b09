package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/internal/output"
	"github.com/anatolykoptev/go-twint/internal/ui"
	"github.com/anatolykoptev/go-twint/twitter"
)

// fakeScraper serves canned pages keyed by cursor.
type fakeScraper struct {
	tweets  map[string]*twitter.TweetPage
	users   map[string]*twitter.UserPage
	byName  map[string]*twitter.TwitterUser
	queries []string
	calls   []string
	err     error
}

func (f *fakeScraper) GetUserByScreenName(_ context.Context, handle string) (*twitter.TwitterUser, error) {
	f.calls = append(f.calls, "user:"+handle)
	if u, ok := f.byName[handle]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (f *fakeScraper) GetUserByID(_ context.Context, userID string) (*twitter.TwitterUser, error) {
	f.calls = append(f.calls, "id:"+userID)
	return &twitter.TwitterUser{ID: userID, Handle: "byid"}, nil
}

func (f *fakeScraper) SearchTimeline(_ context.Context, query, cursor string) (*twitter.TweetPage, error) {
	f.queries = append(f.queries, query)
	return f.tweetPage("search", cursor)
}

func (f *fakeScraper) UserTweets(_ context.Context, userID, cursor string) (*twitter.TweetPage, error) {
	f.calls = append(f.calls, "tweets:"+userID)
	return f.tweetPage("tweets", cursor)
}

func (f *fakeScraper) Likes(_ context.Context, userID, cursor string) (*twitter.TweetPage, error) {
	f.calls = append(f.calls, "likes:"+userID)
	return f.tweetPage("likes", cursor)
}

func (f *fakeScraper) Followers(_ context.Context, userID, cursor string) (*twitter.UserPage, error) {
	f.calls = append(f.calls, "followers:"+userID)
	return f.userPage(cursor)
}

func (f *fakeScraper) Following(_ context.Context, userID, cursor string) (*twitter.UserPage, error) {
	f.calls = append(f.calls, "following:"+userID)
	return f.userPage(cursor)
}

func (f *fakeScraper) tweetPage(_ string, cursor string) (*twitter.TweetPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.tweets[cursor]; ok {
		return p, nil
	}
	return &twitter.TweetPage{}, nil
}

func (f *fakeScraper) userPage(cursor string) (*twitter.UserPage, error) {
	if p, ok := f.users[cursor]; ok {
		return p, nil
	}
	return &twitter.UserPage{}, nil
}

func tweet(id string) *twitter.Tweet {
	return &twitter.Tweet{ID: id, Username: "alice", Text: "t" + id, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func twoPages() map[string]*twitter.TweetPage {
	return map[string]*twitter.TweetPage{
		"":   {Tweets: []*twitter.Tweet{tweet("1"), tweet("2")}, Next: "c1"},
		"c1": {Tweets: []*twitter.Tweet{tweet("3")}, Next: "c2"},
	}
}

func newRunner(s Scraper) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(s, &buf, ui.New(&buf)).WithLocation(time.UTC), &buf
}

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}

func TestSearch_PagesUntilExhausted(t *testing.T) {
	fs := &fakeScraper{tweets: twoPages()}
	r, buf := newRunner(fs)

	cfg := config.Config{Search: config.Some("golang"), Count: config.Some(true)}
	require.NoError(t, r.Search(context.Background(), cfg))

	assert.Equal(t, []string{
		"1 2024-01-01 00:00:00 +0000 <alice> t1",
		"2 2024-01-01 00:00:00 +0000 <alice> t2",
		"3 2024-01-01 00:00:00 +0000 <alice> t3",
		"[+] Finished: Successfully collected 3 Tweets.",
	}, lines(buf))
	assert.Equal(t, []string{"golang", "golang", "golang"}, fs.queries)
}

func TestSearch_Limit(t *testing.T) {
	fs := &fakeScraper{tweets: twoPages()}
	r, buf := newRunner(fs)

	cfg := config.Config{Search: config.Some("golang"), Limit: config.Some(2)}
	require.NoError(t, r.Search(context.Background(), cfg))

	assert.Len(t, lines(buf), 2)
	assert.Len(t, fs.queries, 1)
}

func TestSearch_Timedelta(t *testing.T) {
	fs := &fakeScraper{tweets: map[string]*twitter.TweetPage{
		"": {Tweets: []*twitter.Tweet{tweet("1")}},
	}}
	r, buf := newRunner(fs)

	cfg := config.Config{
		Search:    config.Some("x"),
		Since:     config.Some("2020-01-01"),
		Until:     config.Some("2020-01-05"),
		Timedelta: config.Some(2),
	}
	require.NoError(t, r.Search(context.Background(), cfg))
	assert.Equal(t, []string{
		"x since:2020-01-03 until:2020-01-05",
		"x since:2020-01-01 until:2020-01-03",
	}, fs.queries)
	assert.Equal(t, "[*] Searching 2020-01-03 to 2020-01-05.", lines(buf)[0])
}

func TestSearch_TimedeltaEmptyRange(t *testing.T) {
	fs := &fakeScraper{tweets: map[string]*twitter.TweetPage{
		"": {Tweets: []*twitter.Tweet{tweet("1")}},
	}}
	r, buf := newRunner(fs)

	cfg := config.Config{
		Search:    config.Some("x"),
		Since:     config.Some("2020-01-01"),
		Until:     config.Some("2020-01-01"),
		Timedelta: config.Some(1),
		Count:     config.Some(true),
	}
	require.NoError(t, r.Search(context.Background(), cfg))
	assert.Equal(t, []string{"x since:2020-01-01 until:2020-01-01"}, fs.queries)
	assert.Equal(t, "[+] Finished: Successfully collected 1 Tweets.", lines(buf)[len(lines(buf))-1])
}

func TestSearch_TimedeltaMixedLayouts(t *testing.T) {
	fs := &fakeScraper{tweets: map[string]*twitter.TweetPage{
		"": {Tweets: []*twitter.Tweet{tweet("1")}},
	}}
	r, _ := newRunner(fs)

	cfg := config.Config{
		Search:    config.Some("x"),
		Since:     config.Some("2020-01-01"),
		Until:     config.Some("2020-01-02 12:00:00"),
		Timedelta: config.Some(1),
	}
	require.NoError(t, r.Search(context.Background(), cfg))
	assert.Equal(t, []string{
		"x since_time:1577880000 until_time:1577966400",
		"x since:2020-01-01 until_time:1577880000",
	}, fs.queries)
}

func TestSearch_TimedeltaSharesLimit(t *testing.T) {
	fs := &fakeScraper{tweets: map[string]*twitter.TweetPage{
		"": {Tweets: []*twitter.Tweet{tweet("1"), tweet("2")}},
	}}
	r, buf := newRunner(fs)

	cfg := config.Config{
		Search:    config.Some("x"),
		Since:     config.Some("2020-01-01"),
		Until:     config.Some("2020-01-10"),
		Timedelta: config.Some(3),
		Limit:     config.Some(3),
	}
	require.NoError(t, r.Search(context.Background(), cfg))
	var collected int
	for _, l := range lines(buf) {
		if !strings.HasPrefix(l, "[*]") {
			collected++
		}
	}
	assert.Equal(t, 3, collected)
	assert.Len(t, fs.queries, 2)
}

func TestSearch_EmptyQuery(t *testing.T) {
	r, _ := newRunner(&fakeScraper{})
	assert.Error(t, r.Search(context.Background(), config.Config{}))
}

func TestSearch_ScraperError(t *testing.T) {
	r, _ := newRunner(&fakeScraper{err: fmt.Errorf("pool exhausted")})
	err := r.Search(context.Background(), config.Config{Search: config.Some("x")})
	assert.ErrorContains(t, err, "pool exhausted")
}

func TestSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ := newRunner(&fakeScraper{tweets: twoPages()})
	assert.ErrorIs(t, r.Search(ctx, config.Config{Search: config.Some("x")}), context.Canceled)
}

func TestSearch_BackendUnavailable(t *testing.T) {
	r, _ := newRunner(&fakeScraper{})
	err := r.Search(context.Background(), config.Config{Search: config.Some("x"), Database: config.Some("t.db")})
	assert.ErrorIs(t, err, output.ErrBackendUnavailable)
}

func TestProfile_DropsRetweets(t *testing.T) {
	rt := tweet("2")
	rt.IsRetweet = true
	pages := map[string]*twitter.TweetPage{"": {Tweets: []*twitter.Tweet{tweet("1"), rt, tweet("3")}}}

	fs := &fakeScraper{tweets: pages, byName: map[string]*twitter.TwitterUser{"alice": {ID: "42", Handle: "alice"}}}
	r, buf := newRunner(fs)
	require.NoError(t, r.Profile(context.Background(), config.Config{Username: config.Some("alice"), Count: config.Some(true)}))
	assert.Equal(t, []string{"user:alice", "tweets:42"}, fs.calls)
	out := lines(buf)
	assert.Len(t, out, 3)
	assert.Equal(t, "[+] Finished: Successfully collected 2 Tweets.", out[2])

	fs = &fakeScraper{tweets: pages, byName: fs.byName}
	r, buf = newRunner(fs)
	require.NoError(t, r.Profile(context.Background(), config.Config{Username: config.Some("alice"), Retweets: config.Some(true)}))
	assert.Len(t, lines(buf), 3)
}

func TestProfile_ByUserID(t *testing.T) {
	fs := &fakeScraper{}
	r, _ := newRunner(fs)
	require.NoError(t, r.Profile(context.Background(), config.Config{UserID: config.Some("777")}))
	assert.Equal(t, []string{"id:777", "tweets:777"}, fs.calls)
}

func TestProfile_NoTarget(t *testing.T) {
	r, _ := newRunner(&fakeScraper{})
	assert.ErrorIs(t, r.Profile(context.Background(), config.Config{}), ErrNoTarget)

	cfg := config.Config{Username: config.Some("from%3Aa%20OR%20from%3Ab"), FromUserList: true}
	assert.ErrorIs(t, r.Profile(context.Background(), cfg), ErrNoTarget)
}

func TestFavorites(t *testing.T) {
	fs := &fakeScraper{tweets: twoPages(), byName: map[string]*twitter.TwitterUser{"alice": {ID: "42"}}}
	r, buf := newRunner(fs)
	require.NoError(t, r.Favorites(context.Background(), config.Config{Username: config.Some("alice")}))
	assert.Contains(t, fs.calls, "likes:42")
	assert.Len(t, lines(buf), 3)
}

func TestFollowers(t *testing.T) {
	fs := &fakeScraper{
		byName: map[string]*twitter.TwitterUser{"alice": {ID: "42"}},
		users: map[string]*twitter.UserPage{
			"":  {Users: []*twitter.TwitterUser{{Handle: "bob"}}, Next: "n"},
			"n": {Users: []*twitter.TwitterUser{{Handle: "carol"}}, Next: "n"},
		},
	}
	r, buf := newRunner(fs)
	require.NoError(t, r.Followers(context.Background(), config.Config{Username: config.Some("alice"), Count: config.Some(true)}))
	assert.Equal(t, []string{"bob", "carol", "[+] Finished: Successfully collected 2 users."}, lines(buf))
	assert.Equal(t, []string{"user:alice", "followers:42", "followers:42"}, fs.calls)
}

func TestFollowing_UserFull(t *testing.T) {
	fs := &fakeScraper{
		byName: map[string]*twitter.TwitterUser{"alice": {ID: "42"}},
		users: map[string]*twitter.UserPage{
			"": {Users: []*twitter.TwitterUser{{ID: "9", Handle: "bob", DisplayName: "Bob", Location: "Lima"}}},
		},
	}
	r, buf := newRunner(fs)
	cfg := config.Config{Username: config.Some("alice"), UserFull: config.Some(true), Location: config.Some(true)}
	require.NoError(t, r.Following(context.Background(), cfg))
	assert.Contains(t, buf.String(), "9 | Bob | @bob |")
	assert.Contains(t, buf.String(), "Location: Lima")
	assert.Contains(t, fs.calls, "following:42")
}

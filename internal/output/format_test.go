package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/twitter"
)

func sampleTweet() *twitter.Tweet {
	return &twitter.Tweet{
		ID:        "1001",
		AuthorID:  "42",
		Username:  "alice",
		Name:      "Alice",
		Text:      "hello #go",
		CreatedAt: time.Date(2024, 3, 9, 17, 30, 5, 0, time.UTC),
		Replies:   2,
		Retweets:  3,
		Likes:     4,
		Views:     50,
		Hashtags:  []string{"#go", "#cli"},
	}
}

func TestFormatterTweet(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "default",
			want: "1001 2024-03-09 17:30:05 +0000 <alice> hello #go",
		},
		{
			name: "hashtags",
			cfg:  config.Config{ShowHashtags: config.Some(true)},
			want: "1001 2024-03-09 17:30:05 +0000 <alice> hello #go #go #cli",
		},
		{
			name: "stats",
			cfg:  config.Config{Stats: config.Some(true)},
			want: "1001 2024-03-09 17:30:05 +0000 <alice> hello #go | 2 replies 3 retweets 4 likes",
		},
		{
			name: "custom format ignores suffixes",
			cfg: config.Config{
				Format: config.Some("{username}({user_id}): {tweet} [{hashtags}] {views}"),
				Stats:  config.Some(true),
			},
			want: "alice(42): hello #go [#go,#cli] 50",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFormatter(tt.cfg, time.UTC)
			assert.Equal(t, tt.want, f.Tweet(sampleTweet()))
		})
	}
}

func TestFormatterTweetLocation(t *testing.T) {
	f := NewFormatter(config.Config{Format: config.Some("{date} {time} {timezone}")}, time.FixedZone("X", 2*3600))
	assert.Equal(t, "2024-03-09 19:30:05 +0200", f.Tweet(sampleTweet()))
}

func TestFormatterUser(t *testing.T) {
	u := &twitter.TwitterUser{
		ID:          "42",
		Handle:      "alice",
		DisplayName: "Alice",
		Bio:         "bio",
		Location:    "Oslo",
		URL:         "https://t.co/x",
		Followers:   10,
		Following:   11,
		TweetCount:  12,
		LikeCount:   13,
		CreatedAt:   time.Date(2015, 6, 1, 8, 0, 0, 0, time.UTC),
		IsVerified:  true,
	}

	assert.Equal(t, "alice", NewFormatter(config.Config{}, time.UTC).User(u))

	full := NewFormatter(config.Config{UserFull: config.Some(true)}, time.UTC)
	assert.Equal(t,
		"42 | Alice | @alice | Private: false | Verified: true | Bio: bio | Url: https://t.co/x | Joined: 2015-06-01 08:00:00 | Tweets: 12 | Following: 11 | Followers: 10 | Likes: 13",
		full.User(u))

	withLoc := NewFormatter(config.Config{UserFull: config.Some(true), Location: config.Some(true)}, time.UTC)
	assert.Contains(t, withLoc.User(u), "| Bio: bio | Location: Oslo | Url:")
}

package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/twitter"
)

// DefaultTweetFormat is the console line used without --format.
const DefaultTweetFormat = "{id} {date} {time} {timezone} <{username}> {tweet}"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
	zoneLayout = "-0700"
)

// Formatter renders tweets and users as text lines.
type Formatter struct {
	format   string
	hashtags bool
	stats    bool
	userFull bool
	location bool
	loc      *time.Location
}

// NewFormatter returns a Formatter for cfg rendering times in loc.
func NewFormatter(cfg config.Config, loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return &Formatter{
		format:   cfg.Format.Value(),
		hashtags: config.On(cfg.ShowHashtags),
		stats:    config.On(cfg.Stats),
		userFull: config.On(cfg.UserFull),
		location: config.On(cfg.Location),
		loc:      loc,
	}
}

// Tweet renders t. A custom format replaces the default line entirely,
// including the hashtag and stats suffixes.
func (f *Formatter) Tweet(t *twitter.Tweet) string {
	if f.format != "" {
		return f.fields(t).Replace(f.format)
	}
	line := f.fields(t).Replace(DefaultTweetFormat)
	if f.hashtags && len(t.Hashtags) > 0 {
		line += " " + strings.Join(t.Hashtags, " ")
	}
	if f.stats {
		line += " | " + strconv.Itoa(t.Replies) + " replies " +
			strconv.Itoa(t.Retweets) + " retweets " +
			strconv.Itoa(t.Likes) + " likes"
	}
	return line
}

func (f *Formatter) fields(t *twitter.Tweet) *strings.Replacer {
	ts := t.CreatedAt.In(f.loc)
	return strings.NewReplacer(
		"{id}", t.ID,
		"{date}", ts.Format(dateLayout),
		"{time}", ts.Format(timeLayout),
		"{timezone}", ts.Format(zoneLayout),
		"{username}", t.Username,
		"{user_id}", t.AuthorID,
		"{tweet}", t.Text,
		"{hashtags}", strings.Join(t.Hashtags, ","),
		"{replies}", strconv.Itoa(t.Replies),
		"{retweets}", strconv.Itoa(t.Retweets),
		"{likes}", strconv.Itoa(t.Likes),
		"{views}", strconv.Itoa(t.Views),
	)
}

// User renders u as its handle, or as a full profile line with --user-full.
func (f *Formatter) User(u *twitter.TwitterUser) string {
	if !f.userFull {
		return u.Handle
	}
	parts := []string{
		u.ID,
		u.DisplayName,
		"@" + u.Handle,
		"Private: " + strconv.FormatBool(u.IsPrivate),
		"Verified: " + strconv.FormatBool(u.IsVerified),
		"Bio: " + u.Bio,
	}
	if f.location {
		parts = append(parts, "Location: "+u.Location)
	}
	parts = append(parts,
		"Url: "+u.URL,
		"Joined: "+f.joined(u),
		"Tweets: "+strconv.Itoa(u.TweetCount),
		"Following: "+strconv.Itoa(u.Following),
		"Followers: "+strconv.Itoa(u.Followers),
		"Likes: "+strconv.Itoa(u.LikeCount),
	)
	return strings.Join(parts, " | ")
}

func (f *Formatter) joined(u *twitter.TwitterUser) string {
	if u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.In(f.loc).Format(dateLayout + " " + timeLayout)
}

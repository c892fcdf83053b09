package output

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go-twint/twitter"
)

// tweetRecord is the file representation of a tweet.
type tweetRecord struct {
	ID             string   `json:"id"`
	ConversationID string   `json:"conversation_id"`
	CreatedAt      string   `json:"created_at"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Timezone       string   `json:"timezone"`
	UserID         string   `json:"user_id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	Tweet          string   `json:"tweet"`
	Replies        int      `json:"replies_count"`
	Retweets       int      `json:"retweets_count"`
	Likes          int      `json:"likes_count"`
	Views          int      `json:"views_count"`
	Hashtags       []string `json:"hashtags"`
	Retweet        bool     `json:"retweet"`
}

// userRecord is the file representation of a user.
type userRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	URL       string `json:"url"`
	JoinDate  string `json:"join_date"`
	Tweets    int    `json:"tweets"`
	Following int    `json:"following"`
	Followers int    `json:"followers"`
	Likes     int    `json:"likes"`
	Private   bool   `json:"private"`
	Verified  bool   `json:"verified"`
}

func (f *Formatter) tweetRecord(t *twitter.Tweet) tweetRecord {
	ts := t.CreatedAt.In(f.loc)
	return tweetRecord{
		ID:             t.ID,
		ConversationID: t.ConversationID,
		CreatedAt:      ts.Format("2006-01-02T15:04:05-07:00"),
		Date:           ts.Format(dateLayout),
		Time:           ts.Format(timeLayout),
		Timezone:       ts.Format(zoneLayout),
		UserID:         t.AuthorID,
		Username:       t.Username,
		Name:           t.Name,
		Tweet:          t.Text,
		Replies:        t.Replies,
		Retweets:       t.Retweets,
		Likes:          t.Likes,
		Views:          t.Views,
		Hashtags:       t.Hashtags,
		Retweet:        t.IsRetweet,
	}
}

func (f *Formatter) userRecord(u *twitter.TwitterUser) userRecord {
	return userRecord{
		ID:        u.ID,
		Name:      u.DisplayName,
		Username:  u.Handle,
		Bio:       u.Bio,
		Location:  u.Location,
		URL:       u.URL,
		JoinDate:  f.joined(u),
		Tweets:    u.TweetCount,
		Following: u.Following,
		Followers: u.Followers,
		Likes:     u.LikeCount,
		Private:   u.IsPrivate,
		Verified:  u.IsVerified,
	}
}

var (
	tweetHeader = []string{"id", "conversation_id", "created_at", "date", "time", "timezone", "user_id", "username", "name", "tweet", "replies_count", "retweets_count", "likes_count", "views_count", "hashtags", "retweet"}
	userHeader  = []string{"id", "name", "username", "bio", "location", "url", "join_date", "tweets", "following", "followers", "likes", "private", "verified"}
)

// csvSink writes one row per record. The header goes out before the first
// row unless the file already had content.
type csvSink struct {
	w          *csv.Writer
	c          io.Closer
	f          *Formatter
	headerDone bool
}

func newCSVSink(w io.WriteCloser, f *Formatter, hasContent bool) *csvSink {
	return &csvSink{w: csv.NewWriter(w), c: w, f: f, headerDone: hasContent}
}

func (s *csvSink) write(header, row []string) error {
	if !s.headerDone {
		if err := s.w.Write(header); err != nil {
			return err
		}
		s.headerDone = true
	}
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvSink) Tweet(t *twitter.Tweet) error {
	r := s.f.tweetRecord(t)
	return s.write(tweetHeader, []string{
		r.ID, r.ConversationID, r.CreatedAt, r.Date, r.Time, r.Timezone,
		r.UserID, r.Username, r.Name, r.Tweet,
		strconv.Itoa(r.Replies), strconv.Itoa(r.Retweets), strconv.Itoa(r.Likes), strconv.Itoa(r.Views),
		strings.Join(r.Hashtags, ","), strconv.FormatBool(r.Retweet),
	})
}

func (s *csvSink) User(u *twitter.TwitterUser) error {
	r := s.f.userRecord(u)
	return s.write(userHeader, []string{
		r.ID, r.Name, r.Username, r.Bio, r.Location, r.URL, r.JoinDate,
		strconv.Itoa(r.Tweets), strconv.Itoa(r.Following), strconv.Itoa(r.Followers), strconv.Itoa(r.Likes),
		strconv.FormatBool(r.Private), strconv.FormatBool(r.Verified),
	})
}

func (s *csvSink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.c.Close()
		return err
	}
	return s.c.Close()
}

// jsonSink writes one JSON object per line.
type jsonSink struct {
	enc *json.Encoder
	c   io.Closer
	f   *Formatter
}

func newJSONSink(w io.WriteCloser, f *Formatter) *jsonSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonSink{enc: enc, c: w, f: f}
}

func (s *jsonSink) Tweet(t *twitter.Tweet) error { return s.enc.Encode(s.f.tweetRecord(t)) }

func (s *jsonSink) User(u *twitter.TwitterUser) error { return s.enc.Encode(s.f.userRecord(u)) }

func (s *jsonSink) Close() error { return s.c.Close() }

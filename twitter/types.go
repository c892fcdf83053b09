package twitter

import "time"

// TwitterUser represents a Twitter/X account profile.
type TwitterUser struct {
	ID          string
	Handle      string
	DisplayName string
	Bio         string
	Location    string
	URL         string
	Followers   int
	Following   int
	TweetCount  int
	LikeCount   int
	ListedCount int
	CreatedAt   time.Time
	IsVerified  bool
	IsPrivate   bool
	HasAvatar   bool
	HasBio      bool
}

// Tweet represents a single tweet.
type Tweet struct {
	ID             string
	ConversationID string
	AuthorID       string
	Username       string
	Name           string
	Text           string
	CreatedAt      time.Time
	Replies        int
	Views          int
	Likes          int
	Retweets       int
	Quotes         int
	Hashtags       []string
	Mentions       []string
	IsRetweet      bool
	RetweetedBy    string // handle of the retweeting account when IsRetweet
}

// TweetPage is one page of a tweet timeline.
type TweetPage struct {
	Tweets []*Tweet
	Next   string // bottom cursor, "" on the last page
}

// UserPage is one page of a user list timeline.
type UserPage struct {
	Users []*TwitterUser
	Next  string
}

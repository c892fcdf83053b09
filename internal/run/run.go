// Package run implements the collection modes on top of the Twitter client.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/internal/output"
	"github.com/anatolykoptev/go-twint/internal/ui"
	"github.com/anatolykoptev/go-twint/twitter"
)

// Scraper is the subset of *twitter.Client the collectors use.
type Scraper interface {
	GetUserByScreenName(ctx context.Context, handle string) (*twitter.TwitterUser, error)
	GetUserByID(ctx context.Context, userID string) (*twitter.TwitterUser, error)
	SearchTimeline(ctx context.Context, query, cursor string) (*twitter.TweetPage, error)
	UserTweets(ctx context.Context, userID, cursor string) (*twitter.TweetPage, error)
	Likes(ctx context.Context, userID, cursor string) (*twitter.TweetPage, error)
	Followers(ctx context.Context, userID, cursor string) (*twitter.UserPage, error)
	Following(ctx context.Context, userID, cursor string) (*twitter.UserPage, error)
}

var _ Scraper = (*twitter.Client)(nil)

// ErrNoTarget is returned by modes that need a single account to work on.
var ErrNoTarget = errors.New("this mode needs --username or --userid")

// Runner runs collection modes and writes what they collect.
type Runner struct {
	scraper Scraper
	console io.Writer
	status  *ui.Printer
	loc     *time.Location
}

// New returns a Runner printing records to console in the local time zone.
func New(s Scraper, console io.Writer, status *ui.Printer) *Runner {
	return &Runner{scraper: s, console: console, status: status, loc: time.Local}
}

// WithLocation returns a copy of r rendering times in loc.
func (r *Runner) WithLocation(loc *time.Location) *Runner {
	c := *r
	c.loc = loc
	return &c
}

// Search collects tweets matching the query built from cfg. With a
// timedelta and both bounds set, the range is walked in slices, newest first.
func (r *Runner) Search(ctx context.Context, cfg config.Config) error {
	slices := []window{{since: cfg.Since.Value(), until: cfg.Until.Value()}}
	if days, ok := cfg.Timedelta.Get(); ok && config.Given(cfg.Since) && config.Given(cfg.Until) {
		var err error
		if slices, err = windows(cfg.Since.Value(), cfg.Until.Value(), days); err != nil {
			return err
		}
	}

	return r.tweets(ctx, cfg, func(ctx context.Context, emit func(*twitter.Tweet) (bool, error)) (int, error) {
		total := 0
		for _, w := range slices {
			if len(slices) > 1 {
				r.status.Info(fmt.Sprintf("Searching %s to %s.", w.since, w.until))
			}
			wc := cfg
			if w.since != "" {
				wc.Since = config.Some(w.since)
			}
			if w.until != "" {
				wc.Until = config.Some(w.until)
			}
			query, err := BuildQuery(wc)
			if err != nil {
				return total, err
			}
			if query == "" {
				return total, errors.New("nothing to search for")
			}
			slog.Debug("search", slog.String("query", query))

			n, err := paginate(ctx, remaining(cfg, total), func(ctx context.Context, cursor string) ([]*twitter.Tweet, string, error) {
				p, err := r.scraper.SearchTimeline(ctx, query, cursor)
				if err != nil {
					return nil, "", err
				}
				return p.Tweets, p.Next, nil
			}, emit)
			total += n
			if err != nil || limitReached(cfg, total) {
				return total, err
			}
		}
		return total, nil
	})
}

// Profile collects a user's timeline. Retweets are kept with --retweets or
// --profile-full.
func (r *Runner) Profile(ctx context.Context, cfg config.Config) error {
	u, err := r.target(ctx, cfg)
	if err != nil {
		return err
	}
	keepRetweets := config.On(cfg.Retweets) || config.On(cfg.ProfileFull)

	return r.tweets(ctx, cfg, func(ctx context.Context, emit func(*twitter.Tweet) (bool, error)) (int, error) {
		return paginate(ctx, remaining(cfg, 0), tweetPages(u.ID, r.scraper.UserTweets), func(t *twitter.Tweet) (bool, error) {
			if t.IsRetweet && !keepRetweets {
				return false, nil
			}
			return emit(t)
		})
	})
}

// Favorites collects the tweets a user liked.
func (r *Runner) Favorites(ctx context.Context, cfg config.Config) error {
	u, err := r.target(ctx, cfg)
	if err != nil {
		return err
	}
	return r.tweets(ctx, cfg, func(ctx context.Context, emit func(*twitter.Tweet) (bool, error)) (int, error) {
		return paginate(ctx, remaining(cfg, 0), tweetPages(u.ID, r.scraper.Likes), emit)
	})
}

// Followers collects the accounts following a user.
func (r *Runner) Followers(ctx context.Context, cfg config.Config) error {
	return r.users(ctx, cfg, r.scraper.Followers)
}

// Following collects the accounts a user follows.
func (r *Runner) Following(ctx context.Context, cfg config.Config) error {
	return r.users(ctx, cfg, r.scraper.Following)
}

type tweetPageFunc func(ctx context.Context, userID, cursor string) (*twitter.TweetPage, error)

func tweetPages(userID string, fetch tweetPageFunc) pageFunc[*twitter.Tweet] {
	return func(ctx context.Context, cursor string) ([]*twitter.Tweet, string, error) {
		p, err := fetch(ctx, userID, cursor)
		if err != nil {
			return nil, "", err
		}
		return p.Tweets, p.Next, nil
	}
}

// tweets opens the sinks, runs collect and reports the total.
func (r *Runner) tweets(ctx context.Context, cfg config.Config, collect func(context.Context, func(*twitter.Tweet) (bool, error)) (int, error)) error {
	sink, err := output.Open(cfg, r.console, r.loc)
	if err != nil {
		return err
	}
	n, err := collect(ctx, func(t *twitter.Tweet) (bool, error) {
		return true, sink.Tweet(t)
	})
	return r.finish(cfg, sink, n, "Tweets", err)
}

func (r *Runner) users(ctx context.Context, cfg config.Config, fetch func(ctx context.Context, userID, cursor string) (*twitter.UserPage, error)) error {
	u, err := r.target(ctx, cfg)
	if err != nil {
		return err
	}
	sink, err := output.Open(cfg, r.console, r.loc)
	if err != nil {
		return err
	}
	n, err := paginate(ctx, remaining(cfg, 0), func(ctx context.Context, cursor string) ([]*twitter.TwitterUser, string, error) {
		p, err := fetch(ctx, u.ID, cursor)
		if err != nil {
			return nil, "", err
		}
		return p.Users, p.Next, nil
	}, func(fu *twitter.TwitterUser) (bool, error) {
		return true, sink.User(fu)
	})
	return r.finish(cfg, sink, n, "users", err)
}

func (r *Runner) finish(cfg config.Config, sink output.Sink, n int, noun string, err error) error {
	err = errors.Join(err, sink.Close())
	slog.Debug("collection done", slog.Int("collected", n), slog.Any("error", err))
	if err != nil {
		return err
	}
	if config.On(cfg.Count) && r.status != nil {
		r.status.Finished(fmt.Sprintf("Successfully collected %d %s.", n, noun))
	}
	return nil
}

// target resolves the account a per-user mode works on.
func (r *Runner) target(ctx context.Context, cfg config.Config) (*twitter.TwitterUser, error) {
	if config.Given(cfg.UserID) {
		u, err := r.scraper.GetUserByID(ctx, cfg.UserID.Value())
		if err != nil {
			return nil, fmt.Errorf("user id %s: %w", cfg.UserID.Value(), err)
		}
		return u, nil
	}
	name := strings.TrimPrefix(cfg.Username.Value(), "@")
	if name == "" || cfg.FromUserList {
		return nil, ErrNoTarget
	}
	u, err := r.scraper.GetUserByScreenName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", name, err)
	}
	return u, nil
}

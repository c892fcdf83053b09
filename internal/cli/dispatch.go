package cli

import (
	"context"
	"log/slog"

	"github.com/anatolykoptev/go-twint/internal/config"
)

// Collector runs one collection mode to completion.
type Collector interface {
	Favorites(ctx context.Context, cfg config.Config) error
	Following(ctx context.Context, cfg config.Config) error
	Followers(ctx context.Context, cfg config.Config) error
	Profile(ctx context.Context, cfg config.Config) error
	Search(ctx context.Context, cfg config.Config) error
}

// SelectMode picks the collection mode. Several mode flags may be set; the
// first one in favorites, following, followers, retweets/profile-full order
// wins, and search is the fallback.
func SelectMode(cfg config.Config) config.Mode {
	switch {
	case config.On(cfg.Favorites):
		return config.Favorites
	case config.On(cfg.Following):
		return config.Following
	case config.On(cfg.Followers):
		return config.Followers
	case config.On(cfg.Retweets) || config.On(cfg.ProfileFull):
		return config.Profile
	}
	return config.Search
}

// Dispatch invokes exactly one Collector method for cfg.
func Dispatch(ctx context.Context, cfg config.Config, c Collector) (config.Mode, error) {
	mode := SelectMode(cfg)
	slog.Debug("dispatch", slog.String("mode", mode.String()), slog.String("proxy", cfg.Proxy.String()))

	switch mode {
	case config.Favorites:
		return mode, c.Favorites(ctx, cfg)
	case config.Following:
		return mode, c.Following(ctx, cfg)
	case config.Followers:
		return mode, c.Followers(ctx, cfg)
	case config.Profile:
		return mode, c.Profile(ctx, cfg)
	}
	return mode, c.Search(ctx, cfg)
}

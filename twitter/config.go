package twitter

import (
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"

	"github.com/anatolykoptev/go-twint/captcha"
	"github.com/anatolykoptev/go-twint/internal/transport"
)

// ClientConfig configures NewClient. Zero durations take the defaults below.
type ClientConfig struct {
	Accounts []*Account

	// Transport routes guest requests and accounts without their own proxy.
	Transport transport.Config

	// OpenAccountCount anonymous sessions are created at startup.
	OpenAccountCount int

	// SessionDir holds saved cookies, ~/.twint/sessions when empty.
	SessionDir string
	SessionTTL time.Duration

	// AuthCooldown sidelines an account after auth errors, BanCooldown after
	// a ban or lock.
	AuthCooldown time.Duration
	BanCooldown  time.Duration

	ProxyBackoffInitial time.Duration
	ProxyBackoffMax     time.Duration

	RateLimit ratelimit.Config

	// CaptchaSolver unlocks accounts stuck on an Arkose challenge. Optional.
	CaptchaSolver captcha.Solver

	// MetricsHook observes every API call.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

const (
	defaultSessionTTL   = 24 * time.Hour
	defaultAuthCooldown = time.Hour
	defaultBanCooldown  = 6 * time.Hour
	defaultProxyInitial = 30 * time.Second
	defaultProxyMax     = 30 * time.Minute
)

func (cfg *ClientConfig) defaults() {
	orDefault(&cfg.SessionTTL, defaultSessionTTL)
	orDefault(&cfg.AuthCooldown, defaultAuthCooldown)
	orDefault(&cfg.BanCooldown, defaultBanCooldown)
	orDefault(&cfg.ProxyBackoffInitial, defaultProxyInitial)
	orDefault(&cfg.ProxyBackoffMax, defaultProxyMax)
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
}

func orDefault(d *time.Duration, def time.Duration) {
	if *d == 0 {
		*d = def
	}
}

// proxyBackoff is the wait after the given number of consecutive proxy failures.
func (cfg *ClientConfig) proxyBackoff(fails int) time.Duration {
	return stealth.BackoffConfig{
		InitialWait: cfg.ProxyBackoffInitial,
		MaxWait:     cfg.ProxyBackoffMax,
		Multiplier:  2.0,
		JitterPct:   0.3,
	}.Duration(fails - 1)
}

func (cfg *ClientConfig) poolConfig() pool.Config {
	return pool.Config{
		AlertHook: func(topic string, payload any) {
			slog.Warn("pool alert", slog.String("topic", topic), slog.Any("payload", payload))
		},
		ProxyBackoff: pool.BackoffConfig{
			InitialWait: cfg.ProxyBackoffInitial,
			MaxWait:     cfg.ProxyBackoffMax,
			Multiplier:  2.0,
			JitterPct:   0.3,
		},
	}
}

// Package settings loads the scraper settings that sit outside the command
// line: accounts, CAPTCHA credentials, session storage and client tuning.
package settings

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	yaml "gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go-twint/captcha"
	"github.com/anatolykoptev/go-twint/internal/transport"
	"github.com/anatolykoptev/go-twint/twitter"
)

// Settings is the YAML settings file schema.
type Settings struct {
	// Accounts uses the user:pass[:auth_token:ct0[:totp_secret]] entry format.
	Accounts     []string      `yaml:"accounts"`
	CapsolverKey string        `yaml:"capsolver_key"`
	SessionDir   string        `yaml:"session_dir"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	OpenAccounts int           `yaml:"open_accounts"`

	RateLimit struct {
		RequestsPerWindow int `yaml:"requests_per_window"`
	} `yaml:"rate_limit"`

	ProxyBackoff struct {
		Initial time.Duration `yaml:"initial"`
		Max     time.Duration `yaml:"max"`
	} `yaml:"proxy_backoff"`

	Cooldown struct {
		Auth time.Duration `yaml:"auth"`
		Ban  time.Duration `yaml:"ban"`
	} `yaml:"cooldown"`
}

// Environment variables read by ApplyEnv.
const (
	EnvAccounts     = "TWITTER_ACCOUNTS"
	EnvCapsolverKey = "CAPSOLVER_API_KEY"
	EnvSessionDir   = "TWINT_SESSION_DIR"
	EnvOpenAccounts = "TWINT_OPEN_ACCOUNTS"
)

// Load reads the settings file at path. An empty path yields zero Settings.
func Load(path string) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overlays environment variables on s. Set variables win over
// file values; TWITTER_ACCOUNTS entries are added after the file's.
func ApplyEnv(s *Settings) error {
	if v := strings.TrimSpace(os.Getenv(EnvAccounts)); v != "" {
		s.Accounts = append(s.Accounts, strings.Split(v, ",")...)
	}
	if v := os.Getenv(EnvCapsolverKey); v != "" {
		s.CapsolverKey = v
	}
	if v := os.Getenv(EnvSessionDir); v != "" {
		s.SessionDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvOpenAccounts)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: want a non-negative number, got %q", EnvOpenAccounts, v)
		}
		s.OpenAccounts = n
	}
	return nil
}

// ClientConfig builds the Twitter client configuration. Guest requests,
// accounts without their own proxy and the CAPTCHA solver all use tr.
func (s Settings) ClientConfig(tr transport.Config) (twitter.ClientConfig, error) {
	cfg := twitter.ClientConfig{
		Accounts:            twitter.ParseAccounts(strings.Join(s.Accounts, ",")),
		Transport:           tr,
		SessionDir:          s.SessionDir,
		SessionTTL:          s.SessionTTL,
		OpenAccountCount:    s.OpenAccounts,
		AuthCooldown:        s.Cooldown.Auth,
		BanCooldown:         s.Cooldown.Ban,
		ProxyBackoffInitial: s.ProxyBackoff.Initial,
		ProxyBackoffMax:     s.ProxyBackoff.Max,
	}
	if n := s.RateLimit.RequestsPerWindow; n > 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
		cfg.RateLimit.RequestsPerWindow = n
	}
	if s.CapsolverKey != "" {
		hc, err := tr.HTTPClient(30 * time.Second)
		if err != nil {
			return cfg, fmt.Errorf("captcha transport: %w", err)
		}
		cfg.CaptchaSolver = captcha.NewCapsolver(s.CapsolverKey, captcha.WithHTTPClient(hc))
	}
	return cfg, nil
}

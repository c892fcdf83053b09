package twitter

import (
	"context"
	"fmt"
	"log/slog"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"

	"github.com/anatolykoptev/go-twint/internal/transport"
)

// Client reads timelines and profiles through a pool of accounts, falling
// back to a guest token where x.com allows anonymous reads.
type Client struct {
	client   *stealth.BrowserClient
	pool     *pool.Pool[*Account]
	cfg      ClientConfig
	sessions sessionStore
	guest    guestSession
}

// NewClient logs in every configured account and creates the requested
// number of open accounts. Accounts that cannot log in stay in the pool
// inactive. All connections follow cfg.Transport unless an account has its
// own proxy.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	bc, err := newBrowserClient(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}
	for _, acc := range cfg.Accounts {
		acc.track(cfg.RateLimit)
	}

	c := &Client{
		client:   bc,
		pool:     pool.New(cfg.Accounts, cfg.poolConfig()),
		cfg:      cfg,
		sessions: newSessionStore(cfg.SessionDir, cfg.SessionTTL),
	}
	for _, acc := range cfg.Accounts {
		c.signIn(ctx, acc)
	}
	opened := c.addOpenAccounts(ctx, cfg.OpenAccountCount)

	slog.Debug("twitter client ready",
		slog.Int("accounts", len(cfg.Accounts)),
		slog.Int("open_accounts", opened),
		slog.String("transport", cfg.Transport.String()))
	return c, nil
}

// signIn gives acc its own proxied client when configured and restores or
// creates its session.
func (c *Client) signIn(ctx context.Context, acc *Account) {
	if acc.Proxy != "" {
		ac, err := stealth.NewClient(
			stealth.WithProxy(acc.Proxy),
			stealth.WithProfile(acc.Profile.TLSProfile),
			stealth.WithHeaderOrder(headerOrder),
		)
		if err != nil {
			slog.Warn("account proxy client failed, using shared route",
				slog.String("user", acc.Username), slog.Any("error", err))
		} else {
			acc.client = ac
		}
	}
	if err := c.loadOrLogin(ctx, acc); err != nil {
		slog.Warn("account login failed", slog.String("user", acc.Username), slog.Any("error", err))
		acc.SetActive(false)
	}
}

func (c *Client) addOpenAccounts(ctx context.Context, n int) int {
	added := 0
	for i := range n {
		acc, err := c.loginOpenAccount(ctx)
		if err != nil {
			slog.Warn("open account failed", slog.Int("attempt", i+1), slog.Any("error", err))
			continue
		}
		acc.track(c.cfg.RateLimit)
		c.pool.Add(acc)
		added++
	}
	return added
}

func newBrowserClient(tr transport.Config) (*stealth.BrowserClient, error) {
	return stealth.NewClient(append(tr.StealthOptions(), stealth.WithHeaderOrder(headerOrder))...)
}

// httpFor returns the account's own client or the shared one.
func (c *Client) httpFor(acc *Account) *stealth.BrowserClient {
	if acc.client != nil {
		return acc.client
	}
	return c.client
}

// Pool exposes the account pool.
func (c *Client) Pool() *pool.Pool[*Account] {
	return c.pool
}

func (c *Client) observe(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}

// persist saves the account's cookies; failures only cost a login next run.
func (c *Client) persist(acc *Account) {
	authTok, ct0, _ := acc.Credentials()
	if err := c.sessions.save(acc.Username, authTok, ct0); err != nil {
		slog.Debug("session save failed", slog.String("user", acc.Username), slog.Any("error", err))
	}
}

func get(bc *stealth.BrowserClient, url string, headers map[string]string) ([]byte, map[string]string, int, error) {
	return bc.DoWithHeaderOrder("GET", url, headers, nil, headerOrder)
}

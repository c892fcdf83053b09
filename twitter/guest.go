package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

// guestSession caches the shared guest token and its rate-limit window.
type guestSession struct {
	mu           sync.Mutex
	token        string
	limitedUntil time.Time
}

// current returns the cached token unless it is missing or rate limited.
func (g *guestSession) current() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.token == "" || time.Now().Before(g.limitedUntil) {
		return "", false
	}
	return g.token, true
}

func (g *guestSession) set(token string) {
	g.mu.Lock()
	g.token, g.limitedUntil = token, time.Time{}
	g.mu.Unlock()
}

func (g *guestSession) limit(until time.Time) {
	g.mu.Lock()
	g.limitedUntil = until
	g.mu.Unlock()
}

const guestAttempts = 3

var guestRetry = stealth.BackoffConfig{
	InitialWait: 2 * time.Second,
	MaxWait:     time.Minute,
	Multiplier:  2.0,
	JitterPct:   0.3,
}

// activateGuest requests a new guest token.
func activateGuest(bc *stealth.BrowserClient) (string, error) {
	body, _, status, err := bc.DoWithHeaderOrder("POST", restBase+"/1.1/guest/activate.json", guestTokenHeaders(""), nil, headerOrder)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("guest activate: HTTP %d", status)
	}
	var resp struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("guest activate: %w", err)
	}
	if resp.GuestToken == "" {
		return "", errors.New("guest activate: empty token")
	}
	return resp.GuestToken, nil
}

// acquireGuestToken retries activateGuest with backoff.
func acquireGuestToken(ctx context.Context, bc *stealth.BrowserClient) (string, error) {
	var lastErr error
	for attempt := range guestAttempts {
		if attempt > 0 {
			if err := sleep(ctx, guestRetry.Duration(attempt)); err != nil {
				return "", err
			}
		}
		token, err := activateGuest(bc)
		if err == nil {
			return token, nil
		}
		lastErr = err
		slog.Warn("guest token acquisition failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return "", fmt.Errorf("acquire guest token after %d attempts: %w", guestAttempts, lastErr)
}

// guestToken returns the cached token or activates a new one.
func (c *Client) guestToken(ctx context.Context) (string, error) {
	if gt, ok := c.guest.current(); ok {
		return gt, nil
	}
	gt, err := acquireGuestToken(ctx, c.client)
	if err != nil {
		return "", err
	}
	c.guest.set(gt)
	slog.Debug("guest token acquired")
	return gt, nil
}

// guestGET reads url anonymously after the account pool gave up. A rejected
// token is replaced once.
func (c *Client) guestGET(ctx context.Context, endpoint, url string, poolErr error) ([]byte, error) {
	gt, err := c.guestToken(ctx)
	if err != nil {
		if poolErr != nil {
			return nil, fmt.Errorf("pool exhausted for %s: %w", endpoint, poolErr)
		}
		return nil, fmt.Errorf("guest token unavailable for %s: %w", endpoint, err)
	}

	body, hdrs, status, err := get(c.client, url, guestTokenHeaders(gt))
	if err == nil && (status == 401 || status == 403) {
		slog.Warn("guest token rejected, reacquiring", slog.String("endpoint", endpoint), slog.Int("status", status))
		c.guest.set("")
		if gt, err = c.guestToken(ctx); err != nil {
			c.observe(endpoint, false, false)
			return nil, fmt.Errorf("guest token reacquisition failed for %s: %w", endpoint, err)
		}
		body, hdrs, status, err = get(c.client, url, guestTokenHeaders(gt))
	}
	if err != nil {
		return nil, err
	}

	switch {
	case status == 429:
		c.observe(endpoint, false, true)
		c.guest.limit(parseRateLimitReset(hdrs["x-rate-limit-reset"]))
		return nil, fmt.Errorf("guest token rate-limited for %s", endpoint)
	case status != 200:
		c.observe(endpoint, false, false)
		return nil, httpError(endpoint+" (guest)", status, body)
	}
	c.observe(endpoint, true, false)
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

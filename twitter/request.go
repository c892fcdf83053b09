package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const maxRetries = 3

// doGET reads url with up to maxRetries pooled accounts, then falls back to a
// guest token for endpoints that allow anonymous reads.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	if err := stealth.DefaultJitter.Sleep(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			if err := sleep(ctx, stealth.DefaultBackoff.Duration(attempt)); err != nil {
				return nil, err
			}
		}
		acc, err := c.pickAccount(ctx, endpoint)
		if err != nil {
			lastErr = err
			break
		}
		body, retry, err := c.tryAccount(ctx, acc, endpoint, url)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}

	if requiresAuth(endpoint) {
		if lastErr != nil {
			return nil, fmt.Errorf("pool exhausted for %s (requires auth): %w", endpoint, lastErr)
		}
		return nil, fmt.Errorf("%s requires authenticated account", endpoint)
	}
	return c.guestGET(ctx, endpoint, url, lastErr)
}

// pickAccount returns the next account with budget for endpoint whose proxy
// is not backing off. Auth-only endpoints wait for one to free up.
func (c *Client) pickAccount(ctx context.Context, endpoint string) (*Account, error) {
	usable := func(a *Account) bool {
		return a.AllowRequest(endpoint) && a.proxyReady(time.Now())
	}
	if requiresAuth(endpoint) {
		return c.pool.NextWithWait(ctx, usable, 5*time.Minute)
	}
	return c.pool.Next(usable)
}

// tryAccount performs one authenticated attempt. retry reports whether
// another account may succeed where this one failed.
func (c *Client) tryAccount(ctx context.Context, acc *Account, endpoint, url string) (body []byte, retry bool, err error) {
	if acc.CT0Age() > ct0MaxAge {
		acc.RotateCT0()
		slog.Info("ct0 rotated", slog.String("user", acc.Username))
		c.persist(acc)
	}

	authTok, ct0, ua := acc.Credentials()
	body, hdrs, status, err := get(c.httpFor(acc), url, sessionHeaders(authTok, ct0, ua))
	if err != nil {
		c.connectionFailed(acc, err)
		return nil, true, err
	}
	acc.proxyRecovered()

	switch {
	case status == 429:
		c.observe(endpoint, false, true)
		acc.MarkEndpointRateLimited(endpoint, parseRateLimitReset(hdrs["x-rate-limit-reset"]))
		return nil, true, fmt.Errorf("%s: rate limited", endpoint)

	case status == 401 || status == 403:
		c.observe(endpoint, false, false)
		if class := classifyError(body); class == errCSRF || class == errAuthExpired {
			return c.recoverSession(ctx, acc, class, endpoint, url)
		}
		acc.RecordFailure()
		return nil, true, httpError(endpoint, status, body)

	case status != 200:
		c.observe(endpoint, false, false)
		slog.Warn("unexpected status", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 500)))
		c.recordUnhealthy(acc)
		return nil, false, httpError(endpoint, status, body)
	}
	return c.inspectBody(ctx, acc, endpoint, url, body, hdrs, ct0)
}

// inspectBody handles error codes x.com returns inside a 200 response.
func (c *Client) inspectBody(ctx context.Context, acc *Account, endpoint, url string, body []byte, hdrs map[string]string, ct0 string) ([]byte, bool, error) {
	class := classifyError(body)
	switch class {
	case errNone:
		c.succeed(acc, endpoint, hdrs, ct0)
		return body, false, nil
	case errInternal:
		if hasResponseData(body) {
			slog.Debug("error 131 with usable data", slog.String("endpoint", endpoint))
			c.succeed(acc, endpoint, hdrs, ct0)
			return body, false, nil
		}
		slog.Warn("error 131 without data", slog.String("user", acc.Username), slog.String("endpoint", endpoint))
		return nil, true, fmt.Errorf("%s: internal error 131", endpoint)
	case errCSRF, errAuthExpired:
		return c.recoverSession(ctx, acc, class, endpoint, url)
	}

	c.observe(endpoint, false, false)
	switch class {
	case errSuspended:
		slog.Warn("account suspended, deactivating", slog.String("user", acc.Username))
		c.pool.DeactivateItem(acc)
	case errLocked:
		if c.cfg.CaptchaSolver != nil {
			if b, _, err := c.recoverSession(ctx, acc, class, endpoint, url); err == nil {
				slog.Info("locked account unlocked", slog.String("user", acc.Username))
				return b, false, nil
			}
		}
		slog.Warn("account locked", slog.String("user", acc.Username))
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
	case errBanned:
		slog.Warn("account banned", slog.String("user", acc.Username))
		c.pool.SoftDeactivate(acc, c.cfg.BanCooldown)
	default:
		slog.Warn("account error", slog.String("user", acc.Username), slog.String("class", class.String()))
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
	}
	return nil, true, fmt.Errorf("account %s: %s", acc.Username, class)
}

// recoverSession rotates ct0 after a CSRF mismatch or logs in again for any
// other session error, then replays the request once.
func (c *Client) recoverSession(ctx context.Context, acc *Account, class errorClass, endpoint, url string) ([]byte, bool, error) {
	if class == errCSRF {
		slog.Warn("csrf mismatch, rotating ct0", slog.String("user", acc.Username))
		acc.RotateCT0()
		c.persist(acc)
	} else if err := c.relogin(ctx, acc); err != nil {
		slog.Warn("relogin failed", slog.String("user", acc.Username), slog.Any("error", err))
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
		return nil, true, fmt.Errorf("%s: %w", endpoint, err)
	}

	authTok, ct0, ua := acc.Credentials()
	body, hdrs, status, err := get(c.httpFor(acc), url, sessionHeaders(authTok, ct0, ua))
	if err == nil && status == 200 && classifyError(body) == errNone {
		c.succeed(acc, endpoint, hdrs, ct0)
		return body, false, nil
	}
	if class == errCSRF {
		acc.RecordFailure()
	} else {
		c.pool.SoftDeactivate(acc, c.cfg.AuthCooldown)
	}
	return nil, true, fmt.Errorf("%s: replay after %s failed", endpoint, class)
}

// succeed records the call and adopts a ct0 the server rotated.
func (c *Client) succeed(acc *Account, endpoint string, hdrs map[string]string, sentCT0 string) {
	if fresh := responseCookie(hdrs, "ct0"); fresh != "" && fresh != sentCT0 {
		acc.SetCT0(fresh)
		c.persist(acc)
	}
	c.observe(endpoint, true, false)
	acc.RecordSuccess()
}

func (c *Client) recordUnhealthy(acc *Account) {
	if !acc.RecordFailure() {
		return
	}
	total, failed, consec := acc.Stats()
	slog.Warn("account unhealthy, deactivating",
		slog.String("user", acc.Username),
		slog.Int("total", total),
		slog.Int("failed", failed),
		slog.Int("consec", consec))
	c.pool.DeactivateItem(acc)
}

// connectionFailed backs an account proxy off when the error came from it.
func (c *Client) connectionFailed(acc *Account, err error) {
	if acc.Proxy == "" || !isProxyError(err) {
		acc.RecordFailure()
		return
	}
	fails, wait := acc.proxyFailed(c.cfg.proxyBackoff)
	slog.Warn("proxy down, backing off",
		slog.String("user", acc.Username),
		slog.String("proxy", stealth.MaskProxy(acc.Proxy)),
		slog.Int("consec_fails", fails),
		slog.Duration("backoff", wait))
}

// requiresAuth lists the operations x.com refuses to guests.
func requiresAuth(endpoint string) bool {
	switch endpoint {
	case "Following", "Followers", "Likes":
		return true
	}
	return false
}

var proxyErrorHints = []string{"proxy", "SOCKS", "tunnel", "connection refused", "no such host"}

func isProxyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, hint := range proxyErrorHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

func httpError(endpoint string, status int, body []byte) error {
	return fmt.Errorf("%s HTTP %d: %s", endpoint, status, truncateBytes(body, 200))
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData reports whether body carries a non-null "data" member.
func hasResponseData(body []byte) bool {
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	return len(probe.Data) > 0 && string(probe.Data) != "null"
}

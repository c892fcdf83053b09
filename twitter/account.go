package twitter

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/pool"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// ct0MaxAge is how long a CSRF token is used before it is rotated.
const ct0MaxAge = 4 * time.Hour

// Account is one pooled Twitter identity.
type Account struct {
	Username   string
	Password   string
	AuthToken  string
	CT0        string
	TOTPSecret string
	Proxy      string
	UserAgent  string
	Profile    stealth.BrowserProfile

	active       bool
	reactivateAt time.Time
	client       *stealth.BrowserClient

	mu          sync.Mutex
	ct0Issued   time.Time
	proxyDown   proxyState
	rateLimiter *ratelimit.Limiter

	pool.HealthTracker
}

// proxyState tracks consecutive connection failures through an account proxy.
type proxyState struct {
	fails int
	until time.Time
}

// NewAccount returns an active account without a browser profile.
func NewAccount(username, password string) *Account {
	return &Account{Username: username, Password: password, active: true}
}

// ParseAccount parses one "user:pass[:auth_token:ct0[:totp_secret]]" entry.
func ParseAccount(entry string) (*Account, error) {
	parts := strings.SplitN(strings.TrimSpace(entry), ":", 5)
	if len(parts) < 2 || parts[0] == "" {
		return nil, fmt.Errorf("account entry %q: want user:pass", entry)
	}
	acc := NewAccount(parts[0], parts[1])
	if len(parts) >= 4 {
		acc.SetCredentials(parts[2], parts[3])
	}
	if len(parts) == 5 {
		acc.TOTPSecret = parts[4]
	}
	return acc, nil
}

// ParseAccounts parses a comma-separated list of account entries. Malformed
// entries are logged and skipped; the rest get a rotating browser profile.
func ParseAccounts(raw string) []*Account {
	var accounts []*Account
	for entry := range strings.SplitSeq(raw, ",") {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		acc, err := ParseAccount(entry)
		if err != nil {
			slog.Warn("invalid account entry, skipping", slog.Any("error", err))
			continue
		}
		acc.useBuiltinProfile(len(accounts))
		accounts = append(accounts, acc)
	}
	return accounts
}

func (a *Account) useBuiltinProfile(i int) {
	a.Profile = stealth.BuiltinProfiles[i%len(stealth.BuiltinProfiles)]
	a.UserAgent = a.Profile.UserAgent
}

// track gives the account its own endpoint limiter and health counters.
func (a *Account) track(rl ratelimit.Config) {
	a.mu.Lock()
	a.rateLimiter = ratelimit.NewLimiter(rl)
	a.mu.Unlock()
	a.HealthTracker = pool.DefaultHealthTracker()
}

func (a *Account) ID() string                  { return a.Username }
func (a *Account) IsActive() bool              { return a.active }
func (a *Account) SetActive(v bool)            { a.active = v }
func (a *Account) ReactivateAt() time.Time     { return a.reactivateAt }
func (a *Account) SetReactivateAt(t time.Time) { a.reactivateAt = t }

// Credentials returns auth_token, ct0 and the user agent as one snapshot.
func (a *Account) Credentials() (authToken, ct0, userAgent string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.AuthToken, a.CT0, a.UserAgent
}

// SetCredentials replaces the session cookies.
func (a *Account) SetCredentials(authToken, ct0 string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.AuthToken, a.CT0 = authToken, ct0
	a.ct0Issued = time.Now()
}

// SetCT0 adopts a ct0 issued by the server.
func (a *Account) SetCT0(ct0 string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.CT0 = ct0
	a.ct0Issued = time.Now()
}

// RotateCT0 replaces ct0 with a locally generated token.
func (a *Account) RotateCT0() { a.SetCT0(newCT0()) }

// CT0Age is the time since ct0 last changed. An account that never had one
// reports a full day.
func (a *Account) CT0Age() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ct0Issued.IsZero() {
		return 24 * time.Hour
	}
	return time.Since(a.ct0Issued)
}

func (a *Account) limiter() *ratelimit.Limiter {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rateLimiter
}

// AllowRequest reports whether the account still has budget for endpoint.
func (a *Account) AllowRequest(endpoint string) bool {
	rl := a.limiter()
	return rl == nil || rl.Allow(endpoint)
}

// MarkEndpointRateLimited blocks endpoint for this account until the given time.
func (a *Account) MarkEndpointRateLimited(endpoint string, until time.Time) {
	if rl := a.limiter(); rl != nil {
		rl.MarkRateLimited(endpoint, until)
	}
}

func (a *Account) IsEndpointRateLimited(endpoint string) bool {
	rl := a.limiter()
	return rl != nil && rl.IsRateLimited(endpoint)
}

func (a *Account) EndpointAvailableAt(endpoint string) time.Time {
	if rl := a.limiter(); rl != nil {
		return rl.AvailableAt(endpoint)
	}
	return time.Time{}
}

// proxyReady reports whether the account proxy is out of its backoff window.
func (a *Account) proxyReady(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !now.Before(a.proxyDown.until)
}

// proxyFailed records one more proxy failure and returns the new streak.
func (a *Account) proxyFailed(backoff func(fails int) time.Duration) (int, time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.proxyDown.fails++
	wait := backoff(a.proxyDown.fails)
	a.proxyDown.until = time.Now().Add(wait)
	return a.proxyDown.fails, wait
}

func (a *Account) proxyRecovered() {
	a.mu.Lock()
	a.proxyDown.fails = 0
	a.mu.Unlock()
}
